package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Progress is what a card shows about a user.
type Progress struct {
	UserID      string
	DisplayName string
	Ratio       float64
	Percent     int
}

// Image is an encoded card ready to store.
type Image struct {
	Data        []byte
	Ext         string
	ContentType string
}

// DefaultShareTitle is used when no progress is known for the page.
const DefaultShareTitle = "Votez sur les mesures sur VoterPourLeClimat.fr. A votre tour !"

// ShareTitle is the social preview title of a user's card.
func ShareTitle(displayName string, percent int) string {
	name := cases.Title(language.French).String(strings.TrimSpace(displayName))
	if name == "" {
		return DefaultShareTitle
	}
	return fmt.Sprintf("%s a voté sur %d %% des mesures sur VoterPourLeClimat.fr. A votre tour !", name, percent)
}

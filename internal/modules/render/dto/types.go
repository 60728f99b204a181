package dto

type RenderInput struct {
	DisplayName string
	Ratio       float64
	Format      string
}

type RenderOutput struct {
	Data        []byte
	ContentType string
	Format      string
}

// PlanOutput is the JSON form of a card's drawing commands.
type PlanOutput struct {
	JSON     []byte
	Commands int
}

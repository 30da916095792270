// Package agent implements the stage-driven conversation engine used by the
// sales interview flow.
package agent

// Stage describes one phase of a guided conversation. Stages are ordered and
// the engine tracks the current index.
type Stage struct {
	Title  string
	Prompt string
	Topic  string
}

// StageTitleDone is the title of the terminal interview stage.
const StageTitleDone = "Done"

// SalesStages is the ordered stage list for the sales interview. The final
// "Done" stage marks the interview as complete.
var SalesStages = []Stage{
	{
		Title:  "Introduction",
		Prompt: "Start the conversation by introducing yourself and your company",
		Topic:  "introduction",
	},
	{
		Title:  "General situation of the company",
		Prompt: "Explore the situation in the user's company/team",
		Topic:  "company",
	},
	{
		Title:  "Analysis of selected areas",
		Prompt: "Ask about a few detailed areas related to remote work",
		Topic:  "analysis",
	},
	{
		Title:  "Summary and conclusion",
		Prompt: "Assess how the user would rate remote work at their company",
		Topic:  "summary",
	},
	{
		Title:  StageTitleDone,
		Prompt: "Thank the user for the conversation and wrap up",
		Topic:  "done",
	},
}

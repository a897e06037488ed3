package prompts

import (
	_ "embed"
)

//go:embed agent.txt
var AgentPrompt string

//go:embed final_answer.txt
var FinalAnswerPrompt string

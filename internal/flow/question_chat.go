package flow

import (
	"context"

	"github.com/openai/openai-go"

	"github.com/remote-first-institute/aiwo/internal/genai"
	"github.com/remote-first-institute/aiwo/internal/models"
)

const questionChatPrompt = `As AIwo, your task is to assess my remote work conditions by asking 10 questions to calculate the Remote Work Score. These questions will cover all work-related aspects from this list of areas: Communication, Collaboration, Leadership, Job Satisfaction, Company Culture, Transparency, Well-being, Adaptation, Work management.

Please welcome the user with the message and add emojis. "Hello! How are you? I'm your AI assistant, ready to chat. Feel free to message me in any language, using words or numbers. Please note, my responses may take up to 10 seconds, but I promise it's worth the wait!

Let’s start by finding out your Remote Work Score. I will ask you 10 questions in 8 different areas such as: Communication, Collaboration, Leadership, or Well-being.

Are you ready?!"

Please ask each question one by one and wait for my response before proceeding to the next.

Add information to questions that can be answered as a 1-10 rating. Encourage users to add their own input with detailed responses - you can add this in follow up questions.
When asking questions related to Remote Work Score, add a number of questions out of the total 10, and emojis to make the text easier to read.

Once I have answered your questions, please compute a score from 0-100 based on my responses and output it in the following format: "Score: <score>".

Please note that during the assessment, you should ask relevant follow-up questions to clarify my responses, if necessary. Your questions should be open-ended and encourage me to provide detailed and honest responses.

Also, please ensure that your questions cover all areas listed and are designed to assess my current remote work conditions and challenges accurately. Your questions should help to generate valuable insights and data that can be used to enhance my remote work experience.

Always present the output in a reader-friendly, markdown-formatted style. Use emojis to highlight titles or subtitles for a fun and engaging read.`

const questionChatOpening = "Start by asking the first question now."

// QuestionChat is the legacy free-form assessment. The model conducts the
// whole interview from a single instruction prompt and announces the result
// inline as "Score: <n>". The flow never ends on its own.
type QuestionChat struct {
	client  genai.ClientInterface
	history []openai.ChatCompletionMessageParamUnion
}

// NewQuestionChat creates the legacy free-form assessment flow.
func NewQuestionChat(deps Deps) *QuestionChat {
	return &QuestionChat{
		client: deps.GenAI,
		history: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(questionChatPrompt),
		},
	}
}

// Start asks the model to open the interview.
func (f *QuestionChat) Start(ctx context.Context) (*models.FlowResponse, error) {
	reply, err := f.turn(ctx, questionChatOpening)
	if err != nil {
		return nil, err
	}
	return &models.FlowResponse{Messages: []string{reply}}, nil
}

// Submit forwards one user message to the interview.
func (f *QuestionChat) Submit(ctx context.Context, text string) (*models.FlowResponse, error) {
	reply, err := f.turn(ctx, text)
	if err != nil {
		return nil, err
	}
	return &models.FlowResponse{Messages: []string{reply}}, nil
}

func (f *QuestionChat) turn(ctx context.Context, input string) (string, error) {
	f.history = append(f.history, openai.UserMessage(input))
	reply, err := f.client.GenerateWithMessages(ctx, f.history)
	if err != nil {
		return "", err
	}
	f.history = append(f.history, openai.AssistantMessage(reply))
	return reply, nil
}

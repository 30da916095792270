// Package score provides the remote work questionnaire and score calculation.
package score

import "github.com/remote-first-institute/aiwo/internal/models"

// Question is a single questionnaire entry. Answers may be nil, in which case
// the user picks a digit on the default five-point scale. Points holds one
// value per answer option.
type Question struct {
	Text    string
	Answers []string
	Points  []int
}

// defaultPoints is the symmetric five-point scale used when a question has no
// explicit answer options.
func defaultPoints() []int {
	return []int{-2, -1, 0, 1, 2}
}

// OptionCount returns the number of selectable options for the question.
func (q Question) OptionCount() int {
	return len(q.Points)
}

// The question bank is assembled from ordered blocks. Role-conditional blocks
// are spliced in between the fixed blocks, preserving relative order.

// openingQuestions are asked of everyone, first.
var openingQuestions = []Question{
	{
		Text:   "How easily are you able to **manage your projects** remotely?",
		Points: defaultPoints(),
	},
	{
		Text:    "Your **work effectiveness** is:",
		Answers: []string{"Better at the office", "No difference", "Better remotely"},
		Points:  []int{-2, 0, 2},
	},
	{
		Text: "Our **team habits** include:",
		Answers: []string{
			"Celebrate successes together (eg. completing the project)",
			"Hang out and talk about non-work-related topics",
			"Meet in-person for special team building events",
			"Organize personal events, e.g. volunteer actions, birthdays celebration",
			"None of the above",
		},
		Points: []int{1, 1, 1, 1, 0},
	},
	{
		Text:   "Do you think everyone on your team **feels included**?",
		Points: defaultPoints(),
	},
}

// leadershipQuestions are asked of people leaders only.
var leadershipQuestions = []Question{
	{
		Text:   "Can you **share honest feedback with your team** and have an open discussion about it?",
		Points: defaultPoints(),
	},
	{
		Text:   "Do you know **how your employees feel** even when you work remotely?",
		Points: defaultPoints(),
	},
}

// collaborationQuestions are asked of everyone, after the role-conditional block.
var collaborationQuestions = []Question{
	{
		Text:   "Do you have access to proper **training on how to work remotely**?",
		Points: defaultPoints(),
	},
	{
		Text:   "Can you share **honest feedback with people you report to** which you discuss and action is taken?",
		Points: defaultPoints(),
	},
	{
		Text:   "Do you receive clear information from people you report to about **what your tasks are**?",
		Points: defaultPoints(),
	},
	{
		Text:   "How comfortable do you feel with your **work-life balance** when working remotely?",
		Points: defaultPoints(),
	},
}

// memberQuestion closes the team-member questionnaire.
var memberQuestion = Question{
	Text:   "How connected do you feel **to your team** when working remotely?",
	Points: defaultPoints(),
}

// leaderQuestion closes the people-leader questionnaire.
var leaderQuestion = Question{
	Text:   "How comfortable do you feel with **running the team** remotely?",
	Points: defaultPoints(),
}

// QuestionsFor returns the ordered question list for the given role.
func QuestionsFor(role models.Role) []Question {
	questions := make([]Question, 0, len(openingQuestions)+len(leadershipQuestions)+len(collaborationQuestions)+1)
	questions = append(questions, openingQuestions...)
	if role == models.RolePeopleLeader {
		questions = append(questions, leadershipQuestions...)
	}
	questions = append(questions, collaborationQuestions...)
	if role == models.RolePeopleLeader {
		questions = append(questions, leaderQuestion)
	} else {
		questions = append(questions, memberQuestion)
	}
	return questions
}

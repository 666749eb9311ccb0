package model

// Question is a single multiple-choice item of a mock exam. It is created
// once per session by the question provider and never mutated afterwards.
type Question struct {
	ID                 int      `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Topic              string   `json:"topic"`
	Explanation        string   `json:"explanation"`
}

// QuestionForCandidate is a question without the correct answer, sent to the
// candidate while the exam is running.
type QuestionForCandidate struct {
	ID      int      `json:"id"`
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Topic   string   `json:"topic"`
}

// Topics is the syllabus the content generator is asked to cover.
var Topics = []string{
	"Discrete Structures and Optimization",
	"Computer Arithmetic",
	"Programming in C and C++",
	"Relational Database Design and SQL",
	"Data Structures and Algorithms",
	"Operating Systems",
	"Software Engineering",
	"Data Communication and Computer Networks",
	"Artificial Intelligence",
	"Theory of Computation and Compilers",
}

package types

// JLPT difficulty labels, easiest first. Ordinal comparisons in queries rely
// on the lexical property that "N5" > "N4" > ... > "N1".
const (
	LevelN5 = "N5"
	LevelN4 = "N4"
	LevelN3 = "N3"
	LevelN2 = "N2"
	LevelN1 = "N1"
)

// JLPTLevels is the fixed reference list, easiest first.
var JLPTLevels = []string{LevelN5, LevelN4, LevelN3, LevelN2, LevelN1}

// CEFR labels parallel the JLPT scale on stories.
const (
	LevelA1 = "A1"
	LevelA2 = "A2"
	LevelB1 = "B1"
	LevelB2 = "B2"
	LevelC1 = "C1"
	LevelC2 = "C2"
)

// CEFRForJLPT maps a JLPT label to the CEFR label used alongside it.
var CEFRForJLPT = map[string]string{
	LevelN5: LevelA1,
	LevelN4: LevelA2,
	LevelN3: LevelB1,
	LevelN2: LevelB2,
	LevelN1: LevelC1,
}

// LevelFilters are the accepted values of the story list level filter,
// combining both scales the way the frontend sends them.
var LevelFilters = map[string][2]string{
	"N5-A1": {LevelN5, LevelA1},
	"N4-A2": {LevelN4, LevelA2},
	"N3-B1": {LevelN3, LevelB1},
	"N2-B2": {LevelN2, LevelB2},
	"N1-C1": {LevelN1, LevelC1},
}

func ValidJLPTLevel(level string) bool {
	for _, l := range JLPTLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Recognized answer submission methods. The frontend sends the literal
// Japanese strings.
const (
	ResponseMethodVoice = "音声"
	ResponseMethodText  = "テキスト"
)

func ValidResponseMethod(method string) bool {
	return method == ResponseMethodVoice || method == ResponseMethodText
}

// Quiz question type tags.
const (
	QuestionTypeReading    = "読解"
	QuestionTypeVocabulary = "語彙"
	QuestionTypeGrammar    = "文法"
	QuestionTypeListening  = "リスニング"
)

func ValidQuestionType(questionType string) bool {
	switch questionType {
	case QuestionTypeReading, QuestionTypeVocabulary, QuestionTypeGrammar, QuestionTypeListening:
		return true
	}
	return false
}

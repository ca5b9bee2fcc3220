package rules

import (
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
)

const (
	RiddleQuestion = "Что имеет голову, но не имеет тела?"
	RiddleAnswer   = "сыр"
	RiddlePenalty  = 30

	RiddleCorrectMessage = "Верно! Вы нашли артефакт среди камней. Возвращайтесь в деревню за наградой."
	RiddleWrongMessage   = "Неверно. Монстр из тени атакует. Здоровье -30. Попробуйте снова."
)

// RiddleOptions are the answers a caller may offer as choices.
var RiddleOptions = []string{"сыр", "лук", "капуста"}

// RiddlePrompt is the narrative shown when the riddle is asked.
func RiddlePrompt() string {
	return state.RiddleMarker + " Загадка: " + RiddleQuestion + " Выберите ответ."
}

// CheckRiddleAnswer reports whether raw is the correct answer, ignoring
// case and surrounding whitespace.
func CheckRiddleAnswer(raw string) bool {
	return textnorm.Fold(raw) == RiddleAnswer
}

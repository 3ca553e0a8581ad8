package service

import (
	"encoding/json"
	"examhub_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeAnswerKey_MultipleChoice(t *testing.T) {
	raw := `{"options":["A","B","C"],"correct":"B","Correct":"B","explanation":"因为B"}`
	out := SanitizeAnswerKey(model.MultipleChoice, raw)

	var obj map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(out), &obj))
	assert.NotContains(t, obj, "correct")
	assert.NotContains(t, obj, "Correct")
	// 其余字段原样透传
	assert.Contains(t, obj, "options")
	assert.Contains(t, obj, "explanation")
}

func TestSanitizeAnswerKey_StepByStep(t *testing.T) {
	raw := `[{"hint":"先通分","a":"1/2","answer":"1/2"},{"hint":"再约分","Answer":"1/4","points":5}]`
	out := SanitizeAnswerKey(model.StepByStep, raw)

	var steps []map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(out), &steps))
	assert.Len(t, steps, 2)
	for _, step := range steps {
		assert.NotContains(t, step, "a")
		assert.NotContains(t, step, "answer")
		assert.NotContains(t, step, "Answer")
	}
	assert.Equal(t, "先通分", steps[0]["hint"])
	assert.Equal(t, float64(5), steps[1]["points"])
}

func TestSanitizeAnswerKey_OtherTypesAlwaysEmpty(t *testing.T) {
	assert.Equal(t, "", SanitizeAnswerKey(model.ShortAnswer, "参考答案"))
	assert.Equal(t, "", SanitizeAnswerKey(model.OtherQuestion, `{"whatever":1}`))
}

// 存储的答案 JSON 非法时宁可不下发任何内容
func TestSanitizeAnswerKey_MalformedJSON(t *testing.T) {
	assert.Equal(t, "", SanitizeAnswerKey(model.MultipleChoice, `{"correct":`))
	assert.Equal(t, "", SanitizeAnswerKey(model.MultipleChoice, `not json`))
	assert.Equal(t, "", SanitizeAnswerKey(model.StepByStep, `{"correct":"B"}`))
	assert.Equal(t, "", SanitizeAnswerKey(model.StepByStep, ``))
}

func TestCorrectChoiceAnswer(t *testing.T) {
	got, ok := correctChoiceAnswer(`{"options":["A","B"],"correct":"B"}`)
	assert.True(t, ok)
	assert.Equal(t, "B", got)

	got, ok = correctChoiceAnswer(`{"Correct":"A"}`)
	assert.True(t, ok)
	assert.Equal(t, "A", got)

	_, ok = correctChoiceAnswer(`{"options":["A","B"]}`)
	assert.False(t, ok)

	_, ok = correctChoiceAnswer(`broken`)
	assert.False(t, ok)
}

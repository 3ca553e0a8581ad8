package service

import (
	"encoding/json"
	"examhub_backend/internal/model"
)

// 需要从下发给学生的答案数据里剔除的字段
var (
	choiceCorrectFields = []string{"correct", "Correct"}
	stepAnswerFields    = []string{"a", "answer", "Answer"}
)

// SanitizeAnswerKey 下发试卷前剥离答案，这是防泄题的关键约定：
//   - 选择题：答案是 JSON 对象，剔除 correct/Correct 字段，其余透传
//   - 分步题：答案是步骤对象数组，逐个剔除 a/answer/Answer，保留提示等元数据
//   - 其他题型：参考答案从不下发，直接置空
//
// 存储的答案 JSON 非法时输出空串，宁可少给也不报错。
func SanitizeAnswerKey(qType model.QuestionType, raw string) string {
	switch qType {
	case model.MultipleChoice:
		return sanitizeChoiceKey(raw)
	case model.StepByStep:
		return sanitizeStepKey(raw)
	default:
		return ""
	}
}

func sanitizeChoiceKey(raw string) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return ""
	}
	for _, f := range choiceCorrectFields {
		delete(obj, f)
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return string(out)
}

func sanitizeStepKey(raw string) string {
	var steps []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return ""
	}
	for _, step := range steps {
		for _, f := range stepAnswerFields {
			delete(step, f)
		}
	}
	out, err := json.Marshal(steps)
	if err != nil {
		return ""
	}
	return string(out)
}

// correctChoiceAnswer 从选择题答案 JSON 中取出正确选项，供判分用
func correctChoiceAnswer(raw string) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return "", false
	}
	for _, f := range choiceCorrectFields {
		if v, ok := obj[f]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				return s, true
			}
			return string(v), true
		}
	}
	return "", false
}

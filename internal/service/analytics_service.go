package service

import (
	"errors"
	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// AnalyticsService 下游报表消费方的最小契约：
// 按章节聚合已交卷提交的正确率。只做精确匹配判分，
// 分步题无法机器判分，只计入作答数。
type AnalyticsService struct {
	SubmissionRepo *repository.SubmissionRepository
	ExamRepo       *repository.ExamRepository
	BankRepo       *repository.QuestionBankRepository
}

func NewAnalyticsService(submissionRepo *repository.SubmissionRepository, examRepo *repository.ExamRepository, bankRepo *repository.QuestionBankRepository) *AnalyticsService {
	return &AnalyticsService{SubmissionRepo: submissionRepo, ExamRepo: examRepo, BankRepo: bankRepo}
}

type ChapterStat struct {
	ChapterID uint    `json:"chapterId"`
	Answered  int     `json:"answered"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

// ChapterAccuracy 聚合一场考试下全部已交卷提交的章节正确率。
// 报表只对归属教师（或管理员）开放，避免跨租户读他人考试数据。
func (s *AnalyticsService) ChapterAccuracy(callerID uint, isAdmin bool, examID uint) ([]ChapterStat, error) {
	exam, err := s.ExamRepo.FindExamByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if !isAdmin && exam.TeacherID != callerID {
		return nil, util.ErrPermissionDenied
	}

	subs, err := s.SubmissionRepo.ListSubmittedByExam(examID)
	if err != nil {
		return nil, err
	}

	// 同一场考试的卷子有限，按 paperID 缓存卷题
	paperQuestions := make(map[uint]map[int]*model.Question)
	stats := make(map[uint]*ChapterStat)

	for i := range subs {
		byIndex, ok := paperQuestions[subs[i].PaperID]
		if !ok {
			pqs, err := s.ExamRepo.GetPaperQuestions(subs[i].PaperID)
			if err != nil {
				return nil, err
			}
			byIndex = make(map[int]*model.Question, len(pqs))
			for j := range pqs {
				if pqs[j].Question != nil {
					byIndex[pqs[j].Index] = pqs[j].Question
				}
			}
			paperQuestions[subs[i].PaperID] = byIndex
		}

		answers, err := s.SubmissionRepo.GetAnswers(subs[i].ID)
		if err != nil {
			return nil, err
		}
		for _, ans := range answers {
			q, ok := byIndex[ans.QuestionIndex]
			if !ok {
				continue
			}
			stat := stats[q.ChapterID]
			if stat == nil {
				stat = &ChapterStat{ChapterID: q.ChapterID}
				stats[q.ChapterID] = stat
			}
			stat.Answered++
			if isCorrect(q, ans.Response) {
				stat.Correct++
			}
		}
	}

	result := make([]ChapterStat, 0, len(stats))
	for _, stat := range stats {
		if stat.Answered > 0 {
			stat.Accuracy = float64(stat.Correct) / float64(stat.Answered)
		}
		result = append(result, *stat)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ChapterID < result[j].ChapterID })
	return result, nil
}

func isCorrect(q *model.Question, response string) bool {
	switch q.Type {
	case model.MultipleChoice:
		correct, ok := correctChoiceAnswer(q.AnswerKey)
		if !ok {
			return false
		}
		return strings.TrimSpace(response) == strings.TrimSpace(correct)
	case model.ShortAnswer:
		return strings.TrimSpace(response) != "" && strings.TrimSpace(response) == strings.TrimSpace(q.AnswerKey)
	default:
		return false
	}
}

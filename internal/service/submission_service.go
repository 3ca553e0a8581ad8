package service

import (
	"errors"
	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/logger"
	"examhub_backend/pkg/monitoring"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmissionService 考试作答状态机：
// NotStarted -> Active(1) -> Submitted(2)，Submitted 为终态。
type SubmissionService struct {
	Repo      *repository.SubmissionRepository
	ExamRepo  *repository.ExamRepository
	ClassRepo *repository.ClassRepository
}

func NewSubmissionService(repo *repository.SubmissionRepository, examRepo *repository.ExamRepository, classRepo *repository.ClassRepository) *SubmissionService {
	return &SubmissionService{Repo: repo, ExamRepo: examRepo, ClassRepo: classRepo}
}

// checkEnrollment 班级限定的考试只允许在籍学生参加
func (s *SubmissionService) checkEnrollment(studentID uint, exam *model.Exam) error {
	if exam.ClassID == nil {
		return nil
	}
	enrolled, err := s.ClassRepo.IsEnrolled(*exam.ClassID, studentID)
	if err != nil {
		return err
	}
	if !enrolled {
		return util.ErrNotEnrolled
	}
	return nil
}

// resolvePaper 区分"卷子不存在/不属于该考试"与真正的查询失败
func (s *SubmissionService) resolvePaper(paperID, examID uint) (*model.Paper, error) {
	paper, err := s.ExamRepo.FindPaperByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPaperNotFound
		}
		return nil, err
	}
	if paper.ExamID != examID {
		return nil, util.ErrPaperNotFound
	}
	return paper, nil
}

func (s *SubmissionService) findExam(examID uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindExamByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

type StartAttemptResult struct {
	SubmissionID uint                   `json:"submissionId"`
	PaperID      uint                   `json:"paperId"`
	Status       model.SubmissionStatus `json:"status"`
	StartedAt    time.Time              `json:"startedAt"`
}

// StartAttempt 开始一次作答。对同一 (学生, 试卷) 的进行中提交幂等返回，
// 防止刷新页面重复开考占掉 attempt 名额。
func (s *SubmissionService) StartAttempt(studentID, examID uint, paperID *uint) (*StartAttemptResult, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEnrollment(studentID, exam); err != nil {
		return nil, err
	}

	var paper *model.Paper
	if paperID != nil {
		paper, err = s.resolvePaper(*paperID, examID)
		if err != nil {
			return nil, err
		}
	} else {
		papers, err := s.ExamRepo.ListPapersByExam(examID)
		if err != nil {
			return nil, err
		}
		if len(papers) == 0 {
			return nil, util.ErrNoPapers
		}
		paper = &papers[rand.Intn(len(papers))]
	}

	// 幂等续考优先于次数校验
	existing, err := s.Repo.FindActiveByStudentAndPaper(studentID, paper.ID)
	if err == nil {
		return &StartAttemptResult{
			SubmissionID: existing.ID,
			PaperID:      existing.PaperID,
			Status:       existing.Status,
			StartedAt:    existing.CreatedAt,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	count, err := s.Repo.CountByStudentAndExam(studentID, examID)
	if err != nil {
		return nil, err
	}
	if exam.MaxAttempts > 0 && count >= int64(exam.MaxAttempts) {
		return nil, util.ErrMaxAttempts
	}

	sub := &model.Submission{
		StudentID: studentID,
		PaperID:   paper.ID,
		Status:    model.SubmissionActive,
	}
	if err := s.Repo.Create(sub); err != nil {
		return nil, err
	}

	return &StartAttemptResult{
		SubmissionID: sub.ID,
		PaperID:      sub.PaperID,
		Status:       sub.Status,
		StartedAt:    sub.CreatedAt,
	}, nil
}

// SanitizedQuestion 下发给学生的题目，答案已脱敏
type SanitizedQuestion struct {
	Index      int                `json:"index"`
	QuestionID uint               `json:"questionId"`
	Type       model.QuestionType `json:"type"`
	Content    string             `json:"content"`
	AnswerKey  string             `json:"answerKey"`
}

type SanitizedPaper struct {
	PaperID   uint                `json:"paperId"`
	ExamID    uint                `json:"examId"`
	Code      int                 `json:"code"`
	Duration  int                 `json:"duration"`
	Questions []SanitizedQuestion `json:"questions"`
}

// GetPaper 学生取卷。答案脱敏规则见 SanitizeAnswerKey。
func (s *SubmissionService) GetPaper(studentID, examID, paperID uint) (*SanitizedPaper, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEnrollment(studentID, exam); err != nil {
		return nil, err
	}

	paper, err := s.resolvePaper(paperID, examID)
	if err != nil {
		return nil, err
	}

	pqs, err := s.ExamRepo.GetPaperQuestions(paperID)
	if err != nil {
		return nil, err
	}

	questions := make([]SanitizedQuestion, 0, len(pqs))
	for _, pq := range pqs {
		if pq.Question == nil {
			continue
		}
		questions = append(questions, SanitizedQuestion{
			Index:      pq.Index,
			QuestionID: pq.QuestionID,
			Type:       pq.Question.Type,
			Content:    pq.Question.Content,
			AnswerKey:  SanitizeAnswerKey(pq.Question.Type, pq.Question.AnswerKey),
		})
	}

	return &SanitizedPaper{
		PaperID:   paper.ID,
		ExamID:    exam.ID,
		Code:      paper.Code,
		Duration:  exam.Duration,
		Questions: questions,
	}, nil
}

// loadOwnedActive 保存/交卷共用的归属与状态校验
func (s *SubmissionService) loadOwnedActive(studentID, submissionID uint) (*model.Submission, *model.Exam, error) {
	sub, err := s.Repo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrSubmissionNotFound
		}
		return nil, nil, err
	}
	if sub.StudentID != studentID {
		return nil, nil, util.ErrPermissionDenied
	}
	if sub.Status != model.SubmissionActive {
		return nil, nil, util.ErrSubmissionClosed
	}

	paper, err := s.ExamRepo.FindPaperByID(sub.PaperID)
	if err != nil {
		return nil, nil, err
	}
	exam, err := s.findExam(paper.ExamID)
	if err != nil {
		return nil, nil, err
	}
	return sub, exam, nil
}

// overdue 时间预算：超出时长或越过 closeAt 即视为超时
func overdue(sub *model.Submission, exam *model.Exam, now time.Time) bool {
	budget := time.Duration(exam.Duration) * time.Minute
	if now.Sub(sub.CreatedAt) > budget {
		return true
	}
	if exam.CloseAt != nil && !now.Before(*exam.CloseAt) {
		return true
	}
	return false
}

// enforceTimeBudget 每次保存都查时间预算。超时先强制完卷再报错，
// 保存被整体拒绝，不做部分写入；客户端应视该错误为本次作答终止。
func (s *SubmissionService) enforceTimeBudget(sub *model.Submission, exam *model.Exam) error {
	if !overdue(sub, exam, time.Now()) {
		return nil
	}
	if err := s.Repo.MarkSubmitted(sub); err != nil && !errors.Is(err, repository.ErrStaleSubmission) {
		return err
	}
	return util.ErrTimeExpired
}

func (s *SubmissionService) SaveAnswer(studentID, submissionID uint, questionIndex int, response string) error {
	sub, exam, err := s.loadOwnedActive(studentID, submissionID)
	if err != nil {
		return err
	}
	if err := s.enforceTimeBudget(sub, exam); err != nil {
		return err
	}
	return s.Repo.UpsertAnswer(sub.ID, questionIndex, response)
}

type AnswerItem struct {
	QuestionIndex int    `json:"questionIndex"`
	Response      string `json:"response"`
}

// SaveBulkAnswers 批量保存，整批一个事务
func (s *SubmissionService) SaveBulkAnswers(studentID, submissionID uint, items []AnswerItem) error {
	sub, exam, err := s.loadOwnedActive(studentID, submissionID)
	if err != nil {
		return err
	}
	if err := s.enforceTimeBudget(sub, exam); err != nil {
		return err
	}

	answers := make(map[int]string, len(items))
	for _, item := range items {
		answers[item.QuestionIndex] = item.Response
	}
	return s.Repo.UpsertAnswers(sub.ID, answers)
}

// SubmitExam 显式交卷只查归属不查时间：略微迟到的主动交卷照常受理，
// 这一点与自动保存的超时守卫刻意不同。
func (s *SubmissionService) SubmitExam(studentID, submissionID uint) error {
	sub, err := s.Repo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSubmissionNotFound
		}
		return err
	}
	if sub.StudentID != studentID {
		return util.ErrPermissionDenied
	}
	if sub.Status != model.SubmissionActive {
		return util.ErrSubmissionClosed
	}
	if err := s.Repo.MarkSubmitted(sub); err != nil {
		if errors.Is(err, repository.ErrStaleSubmission) {
			return util.ErrVersionConflict
		}
		return err
	}
	return nil
}

// ForceSubmitOverdue 教师端触发的强制交卷扫描。
// 只有考试的归属教师（或管理员）能触发，跨租户一律拒绝。
func (s *SubmissionService) ForceSubmitOverdue(callerID uint, isAdmin bool, examID uint, trigger string) (int, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return 0, err
	}
	if !isAdmin && exam.TeacherID != callerID {
		return 0, util.ErrPermissionDenied
	}
	return s.forceSubmitExam(exam, trigger)
}

// forceSubmitExam 批量扫描一场考试下所有进行中的提交，超时即强制交卷。
// 重复执行只影响仍然 Active 且仍超时的提交，天然幂等。
func (s *SubmissionService) forceSubmitExam(exam *model.Exam, trigger string) (int, error) {
	subs, err := s.Repo.ListActiveByExam(exam.ID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	forced := 0
	for i := range subs {
		if !overdue(&subs[i], exam, now) {
			continue
		}
		if err := s.Repo.MarkSubmitted(&subs[i]); err != nil {
			// 版本冲突说明学生抢先交了卷,跳过即可
			if errors.Is(err, repository.ErrStaleSubmission) {
				continue
			}
			return forced, err
		}
		forced++
	}

	if forced > 0 {
		monitoring.ForceSubmitCounter.WithLabelValues(trigger).Add(float64(forced))
	}
	return forced, nil
}

// SweepAllOverdue 后台定时任务入口：扫描所有仍有进行中提交的考试
func (s *SubmissionService) SweepAllOverdue() error {
	examIDs, err := s.Repo.ListExamIDsWithActive()
	if err != nil {
		return err
	}
	for _, examID := range examIDs {
		exam, err := s.findExam(examID)
		if err != nil {
			logger.Log.Error("overdue sweep failed", zap.Uint("examId", examID), zap.Error(err))
			continue
		}
		forced, err := s.forceSubmitExam(exam, "sweep")
		if err != nil {
			logger.Log.Error("overdue sweep failed", zap.Uint("examId", examID), zap.Error(err))
			continue
		}
		if forced > 0 {
			logger.Log.Info("force-submitted overdue submissions", zap.Uint("examId", examID), zap.Int("count", forced))
		}
	}
	return nil
}

package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"tutor-connect-go/internal/model"
	"tutor-connect-go/internal/repository"
)

// fakeRatingStore 是 RatingRepository 的内存实现。
// 互斥锁模拟数据库事务对同一导师行的串行化。
type fakeRatingStore struct {
	mu       sync.Mutex
	profiles map[string]*model.UserProfile
	ratings  map[string]*model.Rating // key: tutorUID+"|"+reviewerUID
}

func newFakeRatingStore() *fakeRatingStore {
	return &fakeRatingStore{
		profiles: make(map[string]*model.UserProfile),
		ratings:  make(map[string]*model.Rating),
	}
}

func (f *fakeRatingStore) addTutor(uid string) {
	f.profiles[uid] = &model.UserProfile{UID: uid, DisplayName: uid, IsTutor: true, TutorSubjects: []string{"Java"}}
}

func (f *fakeRatingStore) addStudent(uid string) {
	f.profiles[uid] = &model.UserProfile{UID: uid, DisplayName: uid}
}

type fakeRatingTx struct {
	store *fakeRatingStore
}

func (t *fakeRatingTx) ProfileForUpdate(tutorUID string) (*model.UserProfile, error) {
	p, ok := t.store.profiles[tutorUID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (t *fakeRatingTx) Rating(tutorUID, reviewerUID string) (*model.Rating, error) {
	r, ok := t.store.ratings[tutorUID+"|"+reviewerUID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (t *fakeRatingTx) SaveRating(rating *model.Rating) error {
	cp := *rating
	t.store.ratings[rating.TutorUID+"|"+rating.ReviewerUID] = &cp
	return nil
}

func (t *fakeRatingTx) UpdateTutorStats(tutorUID string, avg float64, count int) error {
	p := t.store.profiles[tutorUID]
	p.TutorStats.RatingAvg = avg
	p.TutorStats.RatingCount = count
	return nil
}

func (f *fakeRatingStore) InTransaction(ctx context.Context, fn func(tx repository.RatingTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(&fakeRatingTx{store: f})
}

func (f *fakeRatingStore) FindByTutorAndReviewer(tutorUID, reviewerUID string) (*model.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.ratings[tutorUID+"|"+reviewerUID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRatingStore) FindAllByTutor(tutorUID string) ([]model.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Rating
	for key, r := range f.ratings {
		if strings.HasPrefix(key, tutorUID+"|") {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRatingStore) stats(tutorUID string) (float64, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[tutorUID]
	return p.TutorStats.RatingAvg, p.TutorStats.RatingCount
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSubmitRatingValidation(t *testing.T) {
	store := newFakeRatingStore()
	store.addTutor("tutor-1")
	store.addStudent("student-1")
	svc := NewRatingService(store)
	ctx := context.Background()

	tests := []struct {
		name     string
		tutor    string
		reviewer string
		score    int
		comment  string
		wantErr  error
	}{
		{name: "score below range", tutor: "tutor-1", reviewer: "student-1", score: 0, wantErr: ErrInvalidScore},
		{name: "score above range", tutor: "tutor-1", reviewer: "student-1", score: 6, wantErr: ErrInvalidScore},
		{name: "self rating", tutor: "tutor-1", reviewer: "tutor-1", score: 4, wantErr: ErrSelfRating},
		{name: "comment too long", tutor: "tutor-1", reviewer: "student-1", score: 4, comment: strings.Repeat("a", 501), wantErr: ErrCommentTooLong},
		{name: "unknown tutor", tutor: "nobody", reviewer: "student-1", score: 4, wantErr: ErrTutorNotFound},
		{name: "target is not a tutor", tutor: "student-1", reviewer: "tutor-1", score: 4, wantErr: ErrTutorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitRating(ctx, tt.tutor, tt.reviewer, tt.score, tt.comment)
			if err != tt.wantErr {
				t.Fatalf("SubmitRating() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// 校验失败不产生任何写入
	if avg, count := store.stats("tutor-1"); avg != 0 || count != 0 {
		t.Fatalf("aggregate changed after rejected submissions: avg=%v count=%d", avg, count)
	}
	if len(store.ratings) != 0 {
		t.Fatalf("ratings written after rejected submissions: %d", len(store.ratings))
	}
}

func TestSubmitRatingBoundaryScores(t *testing.T) {
	store := newFakeRatingStore()
	store.addTutor("tutor-1")
	svc := NewRatingService(store)
	ctx := context.Background()

	if _, err := svc.SubmitRating(ctx, "tutor-1", "student-1", 1, ""); err != nil {
		t.Fatalf("score 1 should be accepted: %v", err)
	}
	if _, err := svc.SubmitRating(ctx, "tutor-1", "student-2", 5, ""); err != nil {
		t.Fatalf("score 5 should be accepted: %v", err)
	}
	avg, count := store.stats("tutor-1")
	if count != 2 || !almostEqual(avg, 3.0) {
		t.Fatalf("got avg=%v count=%d, want avg=3 count=2", avg, count)
	}
}

func TestSubmitRatingIncrementalMean(t *testing.T) {
	store := newFakeRatingStore()
	store.addTutor("tutor-1")
	svc := NewRatingService(store)
	ctx := context.Background()

	// 三个评价者分别打 3、4、5 分
	for reviewer, score := range map[string]int{"a": 3, "b": 4, "c": 5} {
		if _, err := svc.SubmitRating(ctx, "tutor-1", reviewer, score, ""); err != nil {
			t.Fatalf("SubmitRating(%s, %d): %v", reviewer, score, err)
		}
	}

	avg, count := store.stats("tutor-1")
	if count != 3 || !almostEqual(avg, 4.0) {
		t.Fatalf("got avg=%v count=%d, want avg=4 count=3", avg, count)
	}
}

func TestSubmitRatingResubmissionOverwrites(t *testing.T) {
	store := newFakeRatingStore()
	store.addTutor("tutor-1")
	svc := NewRatingService(store)
	ctx := context.Background()

	if _, err := svc.SubmitRating(ctx, "tutor-1", "student-1", 2, "meh"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitRating(ctx, "tutor-1", "student-2", 4, ""); err != nil {
		t.Fatal(err)
	}

	// 同一评价者重复提交：覆盖而非新增
	updated, err := svc.SubmitRating(ctx, "tutor-1", "student-1", 5, "actually great")
	if err != nil {
		t.Fatal(err)
	}

	avg, count := store.stats("tutor-1")
	if count != 2 {
		t.Fatalf("resubmission must not change count, got %d", count)
	}
	if !almostEqual(avg, 4.5) {
		t.Fatalf("got avg=%v, want 4.5", avg)
	}
	if updated.TutorStats.RatingCount != 2 || !almostEqual(updated.TutorStats.RatingAvg, 4.5) {
		t.Fatalf("returned profile not updated: %+v", updated.TutorStats)
	}

	r, err := store.FindByTutorAndReviewer("tutor-1", "student-1")
	if err != nil || r == nil {
		t.Fatalf("rating missing after resubmission: %v", err)
	}
	if r.Score != 5 || r.Comment != "actually great" {
		t.Fatalf("rating not overwritten: %+v", r)
	}
}

func TestSubmitRatingIdempotentResubmission(t *testing.T) {
	store := newFakeRatingStore()
	store.addTutor("tutor-1")
	svc := NewRatingService(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.SubmitRating(ctx, "tutor-1", "student-1", 4, "solid"); err != nil {
			t.Fatal(err)
		}
	}

	avg, count := store.stats("tutor-1")
	if count != 1 || !almostEqual(avg, 4.0) {
		t.Fatalf("repeated identical submissions must be idempotent, got avg=%v count=%d", avg, count)
	}
}

func TestSubmitRatingOrderIndependent(t *testing.T) {
	orders := [][]int{{3, 4, 5}, {5, 4, 3}, {4, 5, 3}}
	reviewers := []string{"a", "b", "c"}

	for _, order := range orders {
		store := newFakeRatingStore()
		store.addTutor("tutor-1")
		svc := NewRatingService(store)
		for i, score := range order {
			if _, err := svc.SubmitRating(context.Background(), "tutor-1", reviewers[i], score, ""); err != nil {
				t.Fatal(err)
			}
		}
		avg, count := store.stats("tutor-1")
		if count != 3 || !almostEqual(avg, 4.0) {
			t.Fatalf("order %v: got avg=%v count=%d, want avg=4 count=3", order, avg, count)
		}
	}
}

func TestSubmitRatingConcurrent(t *testing.T) {
	store := newFakeRatingStore()
	store.addTutor("tutor-1")
	svc := NewRatingService(store)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reviewer := string(rune('a' + i))
			score := 1 + i%5
			if _, err := svc.SubmitRating(context.Background(), "tutor-1", reviewer, score, ""); err != nil {
				t.Errorf("SubmitRating: %v", err)
			}
		}(i)
	}
	wg.Wait()

	// 20 个评价者，分数 1..5 均匀分布 4 轮，总和 60
	avg, count := store.stats("tutor-1")
	if count != n {
		t.Fatalf("got count=%d, want %d", count, n)
	}
	if !almostEqual(avg, 3.0) {
		t.Fatalf("got avg=%v, want 3", avg)
	}
}

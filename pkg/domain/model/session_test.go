package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

func newTestSession(ids ...string) *model.Session {
	doIDs := make([]types.DOID, len(ids))
	for i, id := range ids {
		doIDs[i] = types.DOID(id)
	}
	return model.NewSession(doIDs, time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC))
}

func TestSession_IDFromTimestamp(t *testing.T) {
	s := newTestSession("do_1")
	gt.Value(t, s.ID().String()).Equal("20260826_103000")
}

func TestSession_StateMachine(t *testing.T) {
	s := newTestSession("do_1", "do_2")

	snap := s.Snapshot()
	gt.Value(t, snap.State).Equal(model.StatePending)
	gt.False(t, snap.IsRunning)
	gt.False(t, snap.Complete)

	s.Start()
	snap = s.Snapshot()
	gt.Value(t, snap.State).Equal(model.StateRunning)
	gt.True(t, snap.IsRunning)

	s.Complete()
	snap = s.Snapshot()
	gt.Value(t, snap.State).Equal(model.StateCompleted)
	gt.True(t, snap.Complete)

	// No backward transitions out of a terminal state.
	s.Fail("too late")
	snap = s.Snapshot()
	gt.Value(t, snap.State).Equal(model.StateCompleted)
	gt.Number(t, len(snap.Errors)).Equal(0)
}

func TestSession_FailIsTerminal(t *testing.T) {
	s := newTestSession("do_1")
	s.Start()
	s.Fail("disk full")

	snap := s.Snapshot()
	gt.Value(t, snap.State).Equal(model.StateFailed)
	gt.True(t, snap.Complete)
	gt.Array(t, snap.Errors).Has("disk full")

	s.Complete()
	gt.Value(t, s.Snapshot().State).Equal(model.StateFailed)
}

func TestSession_CountersNeverExceedTotal(t *testing.T) {
	s := newTestSession("do_1", "do_2")
	s.Start()

	s.RecordCourse(&model.CourseItem{DOID: "do_1", Name: "A"})
	s.RecordCourse(&model.CourseItem{DOID: "do_2", Err: "not found"})
	// Extra record must be ignored.
	s.RecordCourse(&model.CourseItem{DOID: "do_3", Name: "C"})

	snap := s.Snapshot()
	gt.Number(t, snap.Completed).Equal(1)
	gt.Number(t, snap.Failed).Equal(1)
	gt.Number(t, snap.Completed+snap.Failed).Equal(snap.TotalCourses)
}

func TestSession_RecordCourseCollectsModuleErrors(t *testing.T) {
	s := newTestSession("do_1")
	s.Start()

	s.RecordCourse(&model.CourseItem{
		DOID: "do_1",
		Name: "Course",
		Modules: []model.ModuleItem{
			{DOID: "do_m1", Downloaded: true},
			{DOID: "do_m2", Err: "resource do_m2: download failed"},
		},
	})

	snap := s.Snapshot()
	// One module succeeded, so the course itself completed.
	gt.Number(t, snap.Completed).Equal(1)
	gt.Number(t, snap.Failed).Equal(0)
	gt.Array(t, snap.Errors).Has("resource do_m2: download failed")
}

func TestCourseItem_Failed(t *testing.T) {
	tests := []struct {
		name string
		item model.CourseItem
		want bool
	}{
		{
			name: "course fetch error",
			item: model.CourseItem{DOID: "do_1", Err: "not found"},
			want: true,
		},
		{
			name: "all SCORM modules failed",
			item: model.CourseItem{
				DOID: "do_1",
				Modules: []model.ModuleItem{
					{DOID: "do_m1", Err: "boom"},
					{DOID: "do_m2", Err: "boom"},
				},
			},
			want: true,
		},
		{
			name: "one module succeeded",
			item: model.CourseItem{
				DOID: "do_1",
				Modules: []model.ModuleItem{
					{DOID: "do_m1", Downloaded: true},
					{DOID: "do_m2", Err: "boom"},
				},
			},
			want: false,
		},
		{
			name: "only skipped modules",
			item: model.CourseItem{
				DOID: "do_1",
				Modules: []model.ModuleItem{
					{DOID: "do_m1", Skipped: true},
				},
			},
			want: false,
		},
		{
			name: "no modules at all",
			item: model.CourseItem{DOID: "do_1", Name: "Empty"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Failed(); got != tt.want {
				t.Errorf("Failed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContent_IsSCORM(t *testing.T) {
	scorm := &model.Content{MimeType: model.MimeTypeSCORM}
	gt.True(t, scorm.IsSCORM())

	pdf := &model.Content{MimeType: "application/pdf"}
	gt.False(t, pdf.IsSCORM())
}

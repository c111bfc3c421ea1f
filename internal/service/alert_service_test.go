package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkmate/bunkmate-api/internal/dto"
	"github.com/bunkmate/bunkmate-api/internal/mailer"
	"github.com/bunkmate/bunkmate-api/internal/models"
	"github.com/bunkmate/bunkmate-api/pkg/jobs"
)

func firingDecision() dto.AlertDecision {
	return dto.AlertDecision{
		ShouldAlert:        true,
		UserID:             "user-1",
		SubjectID:          "sub-1",
		SubjectName:        "Physics",
		PreviousPercentage: 75,
		CurrentPercentage:  71.43,
	}
}

type fakeAlertUsers struct {
	user *models.User
}

func (f *fakeAlertUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	return f.user, nil
}

type recordingQueue struct {
	jobs []jobs.Job
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func TestAlertServiceEvaluate(t *testing.T) {
	svc := NewAlertService(AlertServiceParams{Threshold: 75})

	subject := func(attended, total int) models.Subject {
		return models.Subject{ID: "sub-1", UserID: "user-1", Name: "Physics", Attended: attended, Total: total}
	}

	tests := []struct {
		name   string
		before models.Subject
		after  models.Subject
		fires  bool
	}{
		{name: "crossing downward fires", before: subject(15, 20), after: subject(15, 21), fires: true},
		{name: "already below stays silent", before: subject(14, 20), after: subject(14, 21), fires: false},
		{name: "still at threshold stays silent", before: subject(15, 20), after: subject(18, 24), fires: false},
		{name: "rising above stays silent", before: subject(14, 20), after: subject(15, 20), fires: false},
		{name: "empty ledger counts as zero percent", before: subject(0, 0), after: subject(0, 1), fires: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := svc.Evaluate(tc.before, tc.after)
			require.NoError(t, err)
			assert.Equal(t, tc.fires, decision.ShouldAlert)
			assert.Equal(t, "user-1", decision.UserID)
			assert.Equal(t, "Physics", decision.SubjectName)
		})
	}
}

func TestAlertServiceEvaluateRejectsNegativeCounts(t *testing.T) {
	svc := NewAlertService(AlertServiceParams{})
	_, err := svc.Evaluate(
		models.Subject{Attended: -1, Total: 10},
		models.Subject{Attended: 0, Total: 10},
	)
	require.Error(t, err)
}

func TestAlertServiceDispatch(t *testing.T) {
	user := &models.User{ID: "user-1", Name: "Asha", Email: "asha@example.com", NotificationsEnabled: true}
	queue := &recordingQueue{}
	svc := NewAlertService(AlertServiceParams{
		Users:     &fakeAlertUsers{user: user},
		Queue:     queue,
		Threshold: 75,
	})

	before := models.Subject{ID: "sub-1", UserID: user.ID, Name: "Physics", Attended: 15, Total: 20}
	after := models.Subject{ID: "sub-1", UserID: user.ID, Name: "Physics", Attended: 15, Total: 21}

	decision, err := svc.Evaluate(before, after)
	require.NoError(t, err)
	require.True(t, decision.ShouldAlert)

	require.NoError(t, svc.Dispatch(context.Background(), decision))
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "attendance_alert", queue.jobs[0].Type)

	msg, ok := queue.jobs[0].Payload.(mailer.Message)
	require.True(t, ok)
	assert.Equal(t, "asha@example.com", msg.ToAddress)
	assert.Contains(t, msg.Subject, "Below 75%")
	assert.Contains(t, msg.HTMLContent, "Physics")
}

func TestAlertServiceDispatchSkipsOptedOutUsers(t *testing.T) {
	user := &models.User{ID: "user-1", Name: "Asha", Email: "asha@example.com", NotificationsEnabled: false}
	queue := &recordingQueue{}
	svc := NewAlertService(AlertServiceParams{
		Users: &fakeAlertUsers{user: user},
		Queue: queue,
	})

	err := svc.Dispatch(context.Background(), firingDecision())
	require.NoError(t, err)
	assert.Empty(t, queue.jobs)
}

func TestAlertServiceDispatchIgnoresNonFiringDecision(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewAlertService(AlertServiceParams{Queue: queue})

	decision := firingDecision()
	decision.ShouldAlert = false
	require.NoError(t, svc.Dispatch(context.Background(), decision))
	assert.Empty(t, queue.jobs)
}

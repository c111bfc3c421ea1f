package mailer

import (
	"context"
	"fmt"

	"github.com/bunkmate/bunkmate-api/pkg/jobs"
)

// QueueHandler adapts a Mailer into a jobs handler so deliveries get
// the queue's retry policy.
func QueueHandler(m Mailer) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(Message)
		if !ok {
			return fmt.Errorf("job %s: payload is %T, want mailer.Message", job.ID, job.Payload)
		}
		return m.Send(ctx, msg)
	}
}

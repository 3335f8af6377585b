package email

import (
	"context"
)

// Service delivers notification email. Implementations must be safe for
// concurrent use; callers treat failures as soft errors.
type Service interface {
	SendCustom(ctx context.Context, to string, subject string, htmlBody string) error
}

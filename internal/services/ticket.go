package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gatherly/internal/domain"
)

const (
	ticketCodePrefix = "TKT-"
	ticketCodeBytes  = 6
	issueMaxAttempts = 5
)

type ticketIssuer struct {
	registrationRepo domain.RegistrationRepository
}

// NewTicketIssuer returns a TicketIssuer whose codes are unique for the
// lifetime of the store. Entropy comes from a fresh UUID per attempt;
// uniqueness is guaranteed by checking the store and, ultimately, by
// the unique index on ticket codes.
func NewTicketIssuer(registrationRepo domain.RegistrationRepository) domain.TicketIssuer {
	return &ticketIssuer{registrationRepo: registrationRepo}
}

func (t *ticketIssuer) Issue(ctx context.Context) (string, error) {
	for attempt := 0; attempt < issueMaxAttempts; attempt++ {
		id := uuid.New()
		code := ticketCodePrefix + strings.ToUpper(hex.EncodeToString(id[:ticketCodeBytes]))
		exists, err := t.registrationRepo.TicketCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check ticket code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not issue a unique ticket code after %d attempts", issueMaxAttempts)
}

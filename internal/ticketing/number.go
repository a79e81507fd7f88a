package ticketing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// NewTicketNumber returns a human-readable ticket number of the form
// TKT-<unix millis>-<8 hex chars>. The random suffix comes from crypto/rand,
// so uniqueness does not lean on timestamp granularity under load.
func NewTicketNumber() (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate ticket number: %w", err)
	}
	return fmt.Sprintf("TKT-%d-%s", time.Now().UnixMilli(),
		strings.ToUpper(hex.EncodeToString(suffix))), nil
}

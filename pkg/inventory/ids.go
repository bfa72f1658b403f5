package inventory

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pujana-systems/stockwatch/pkg/model"
)

// GenerateBillNumber builds a bill number of the form
// <TYPE>-<yyyymmdd>-<6 hex chars>, e.g. SELL-20260830-A1B2C3.
func GenerateBillNumber(billType model.BillType) string {
	id := uuid.New()
	suffix := strings.ToUpper(hex.EncodeToString(id[:])[:6])
	return fmt.Sprintf("%s-%s-%s",
		strings.ToUpper(string(billType)),
		time.Now().UTC().Format("20060102"),
		suffix,
	)
}

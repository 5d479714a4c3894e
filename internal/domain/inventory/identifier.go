package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wms/backend/internal/domain/shared"
)

// QRPayloadVersion is the version written into new QR payloads
const QRPayloadVersion = 1

var uniqueIDPattern = regexp.MustCompile(`^([A-Z0-9]{1,8})-(\d{6})-(\d{5,})-(\d)$`)

// Codes are the identifiers printed on an item's labels
type Codes struct {
	UniqueID  string
	QRPayload string
	Barcode   string
}

// GenerateInput describes the item a code is generated for
type GenerateInput struct {
	PartNo   string
	PONumber string
	At       time.Time
}

// IdentifierGenerator produces codes that are unique among existing items
type IdentifierGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (Codes, error)
}

// QRPayload is the JSON document encoded into the QR label
type QRPayload struct {
	Version  int    `json:"v"`
	UniqueID string `json:"uid"`
	PartNo   string `json:"part,omitempty"`
	PONumber string `json:"po,omitempty"`
}

// FormatUniqueID builds <prefix>-<YYMMDD>-<seq>-<check>
func FormatUniqueID(prefix string, day time.Time, seq int64) string {
	date := day.Format("060102")
	digits := fmt.Sprintf("%s%05d", date, seq)
	return fmt.Sprintf("%s-%s-%05d-%d", strings.ToUpper(prefix), date, seq, CheckDigit(digits))
}

// CheckDigit computes the Luhn mod-10 check digit over a string of digits
func CheckDigit(digits string) int {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// IsValidUniqueID checks the shape and check digit of a unique id
func IsValidUniqueID(uid string) bool {
	m := uniqueIDPattern.FindStringSubmatch(uid)
	if m == nil {
		return false
	}
	return CheckDigit(m[2]+m[3]) == int(m[4][0]-'0')
}

// EncodeQRPayload builds the compact JSON payload for a QR label
func EncodeQRPayload(uid, partNo, poNumber string) (string, error) {
	b, err := json.Marshal(QRPayload{
		Version:  QRPayloadVersion,
		UniqueID: uid,
		PartNo:   partNo,
		PONumber: poNumber,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ResolveScanCode turns whatever the scanner produced (a bare unique id from
// the barcode, or the QR JSON payload) into the item's unique id
func ResolveScanCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", shared.NewDomainError(shared.CodeInvalidScanCode, "Scan code is empty")
	}

	if strings.HasPrefix(code, "{") {
		var payload QRPayload
		if err := json.Unmarshal([]byte(code), &payload); err != nil {
			return "", shared.NewDomainError(shared.CodeInvalidScanCode, "QR payload is not valid JSON")
		}
		uid := strings.ToUpper(strings.TrimSpace(payload.UniqueID))
		if !IsValidUniqueID(uid) {
			return "", shared.NewDomainError(shared.CodeInvalidScanCode,
				fmt.Sprintf("QR payload carries an invalid item code %q", payload.UniqueID))
		}
		return uid, nil
	}

	uid := strings.ToUpper(code)
	if !IsValidUniqueID(uid) {
		return "", shared.NewDomainError(shared.CodeInvalidScanCode,
			fmt.Sprintf("%q is not a valid item code", code))
	}
	return uid, nil
}

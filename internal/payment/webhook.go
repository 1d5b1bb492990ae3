package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SignatureHeader carries "t=<unix>,v1=<hex hmac-sha256 of t.payload>".
const SignatureHeader = "Payment-Signature"

var ErrInvalidSignature = errors.New("invalid webhook signature")

type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration, now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}

	return &Verifier{secret: []byte(secret), tolerance: tolerance, now: now}
}

// Verify checks the signature header against payload. Any of several v1
// values may match, so secrets can be rotated.
func (v *Verifier) Verify(header string, payload []byte) error {
	var (
		ts   int64
		sigs []string
	)

	for part := range strings.SplitSeq(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}

		switch key {
		case "t":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}

			ts = n
		case "v1":
			sigs = append(sigs, value)
		}
	}

	if ts == 0 || len(sigs) == 0 {
		return fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}

	signedAt := time.Unix(ts, 0)
	if v.tolerance > 0 {
		if age := v.now().Sub(signedAt); age > v.tolerance || age < -v.tolerance {
			return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
		}
	}

	expected := v.mac(ts, payload)

	for _, sig := range sigs {
		got, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}

		if hmac.Equal(got, expected) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// Sign builds a header value for payload signed at t.
func (v *Verifier) Sign(t time.Time, payload []byte) string {
	ts := t.Unix()

	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(v.mac(ts, payload)))
}

func (v *Verifier) mac(ts int64, payload []byte) []byte {
	m := hmac.New(sha256.New, v.secret)
	m.Write([]byte(strconv.FormatInt(ts, 10)))
	m.Write([]byte("."))
	m.Write(payload)

	return m.Sum(nil)
}

type eventPayload struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`
	Data struct {
		Object struct {
			ID                string `json:"id"`
			PaymentReference  string `json:"payment_reference"`
			ClientReferenceID string `json:"client_reference_id"`
		} `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a verified webhook body.
func ParseEvent(payload []byte) (Event, error) {
	var p eventPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return Event{}, fmt.Errorf("decoding webhook event: %w", err)
	}

	if p.ID == "" || p.Type == "" {
		return Event{}, errors.New("webhook event missing id or type")
	}

	ev := Event{
		ID:               p.ID,
		Type:             p.Type,
		SessionID:        p.Data.Object.ID,
		PaymentReference: p.Data.Object.PaymentReference,
	}

	if ref := p.Data.Object.ClientReferenceID; ref != "" {
		id, err := uuid.Parse(ref)
		if err != nil {
			return Event{}, fmt.Errorf("webhook event %s: bad client_reference_id: %w", p.ID, err)
		}

		ev.OrderID = id
	}

	return ev, nil
}

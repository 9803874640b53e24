package payment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"imovelhub/internal/domain/request"
)

var (
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrMissingRequestRef = errors.New("callback missing request reference")
)

// PaidMarker applies the approved -> paid transition. Implemented by the
// request service.
type PaidMarker interface {
	MarkPaid(ctx context.Context, requestID string) error
}

// Service handles the billing provider's out-of-band confirmation callback.
// The provider signs callbacks with md5 over outSum:invId:password2 plus the
// sorted Shp_ parameters; the buyer-vault request id travels in Shp_request.
type Service struct {
	requests  PaidMarker
	password2 string
	logger    *zap.Logger
}

func NewService(requests PaidMarker, password2 string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{requests: requests, password2: password2, logger: logger}
}

// HandleResultCallback verifies the callback and confirms the payment.
// A replayed callback for an already-paid request is acknowledged, not
// re-applied.
func (s *Service) HandleResultCallback(ctx context.Context, outSum string, invID int64, signature string, shpParams map[string]string) (string, error) {
	valid := strings.EqualFold(signature, s.resultSignature(outSum, invID, shpParams))
	s.logger.Info("payment callback signature validation",
		zap.Int64("inv_id", invID), zap.Bool("signature_valid", valid))
	if !valid {
		return "", ErrInvalidSignature
	}

	requestID := shpParams["request"]
	if requestID == "" {
		return "", ErrMissingRequestRef
	}

	err := s.requests.MarkPaid(ctx, requestID)
	if errors.Is(err, request.ErrAlreadyDecided) {
		s.logger.Info("idempotent callback, request already paid",
			zap.Int64("inv_id", invID), zap.String("request_id", requestID))
		err = nil
	}
	if err != nil {
		return "", err
	}
	return "OK" + strconv.FormatInt(invID, 10), nil
}

func (s *Service) resultSignature(outSum string, invID int64, shpParams map[string]string) string {
	parts := []string{outSum, strconv.FormatInt(invID, 10), s.password2}
	parts = append(parts, flattenShpParams(shpParams)...)
	return md5Hex(strings.Join(parts, ":"))
}

func flattenShpParams(shp map[string]string) []string {
	keys := make([]string, 0, len(shp))
	for k := range shp {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, "Shp_"+k+"="+shp[k])
	}
	return out
}

func md5Hex(s string) string {
	h := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

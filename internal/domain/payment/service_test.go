package payment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"imovelhub/internal/domain/request"
)

type MockPaidMarker struct {
	mock.Mock
}

func (m *MockPaidMarker) MarkPaid(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func signFor(password2, outSum string, invID string, shp map[string]string) string {
	parts := []string{outSum, invID, password2}
	keys := make([]string, 0, len(shp))
	for k := range shp {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, "Shp_"+k+"="+shp[k])
	}
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func TestService_HandleResultCallback_Success(t *testing.T) {
	requests := new(MockPaidMarker)
	requests.On("MarkPaid", mock.Anything, "req-1").Return(nil)

	service := NewService(requests, "secret2", nil)

	shp := map[string]string{"request": "req-1"}
	sig := signFor("secret2", "99.90", "12345", shp)

	out, err := service.HandleResultCallback(context.Background(), "99.90", 12345, sig, shp)

	assert.NoError(t, err)
	assert.Equal(t, "OK12345", out)
	requests.AssertExpectations(t)
}

func TestService_HandleResultCallback_SignatureCaseInsensitive(t *testing.T) {
	requests := new(MockPaidMarker)
	requests.On("MarkPaid", mock.Anything, "req-1").Return(nil)

	service := NewService(requests, "secret2", nil)

	shp := map[string]string{"request": "req-1"}
	sig := strings.ToLower(signFor("secret2", "99.90", "12345", shp))

	_, err := service.HandleResultCallback(context.Background(), "99.90", 12345, sig, shp)
	assert.NoError(t, err)
}

func TestService_HandleResultCallback_InvalidSignature(t *testing.T) {
	requests := new(MockPaidMarker)
	service := NewService(requests, "secret2", nil)

	shp := map[string]string{"request": "req-1"}

	_, err := service.HandleResultCallback(context.Background(), "99.90", 12345, "DEADBEEF", shp)

	assert.ErrorIs(t, err, ErrInvalidSignature)
	requests.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestService_HandleResultCallback_TamperedShpParam(t *testing.T) {
	requests := new(MockPaidMarker)
	service := NewService(requests, "secret2", nil)

	shp := map[string]string{"request": "req-1"}
	sig := signFor("secret2", "99.90", "12345", shp)

	// Signature computed over a different request id.
	shp["request"] = "req-2"
	_, err := service.HandleResultCallback(context.Background(), "99.90", 12345, sig, shp)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestService_HandleResultCallback_MissingRequestRef(t *testing.T) {
	requests := new(MockPaidMarker)
	service := NewService(requests, "secret2", nil)

	shp := map[string]string{"other": "x"}
	sig := signFor("secret2", "99.90", "12345", shp)

	_, err := service.HandleResultCallback(context.Background(), "99.90", 12345, sig, shp)

	assert.ErrorIs(t, err, ErrMissingRequestRef)
	requests.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestService_HandleResultCallback_IdempotentReplay(t *testing.T) {
	requests := new(MockPaidMarker)
	requests.On("MarkPaid", mock.Anything, "req-1").Return(request.ErrAlreadyDecided)

	service := NewService(requests, "secret2", nil)

	shp := map[string]string{"request": "req-1"}
	sig := signFor("secret2", "99.90", "12345", shp)

	out, err := service.HandleResultCallback(context.Background(), "99.90", 12345, sig, shp)

	assert.NoError(t, err)
	assert.Equal(t, "OK12345", out)
}

func TestService_HandleResultCallback_MarkPaidFailure(t *testing.T) {
	requests := new(MockPaidMarker)
	requests.On("MarkPaid", mock.Anything, "req-1").Return(errors.New("db down"))

	service := NewService(requests, "secret2", nil)

	shp := map[string]string{"request": "req-1"}
	sig := signFor("secret2", "99.90", "12345", shp)

	_, err := service.HandleResultCallback(context.Background(), "99.90", 12345, sig, shp)
	assert.Error(t, err)
}

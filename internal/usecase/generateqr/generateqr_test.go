package generateqr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Xausdorf/paypal-relay/internal/usecase/generateqr"
	"github.com/Xausdorf/paypal-relay/internal/usecase/mocks"
)

func TestGenerateQRUseCase_Execute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gen := mocks.NewMockGenerator(ctrl)
	uc := generateqr.NewUseCase(gen)

	gen.EXPECT().Generate("https://paypal.example/approve/ORDER-1").Return([]byte("png"), nil)

	png, err := uc.Execute(generateqr.Request{ApprovalURL: "https://paypal.example/approve/ORDER-1"})

	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)
}

func TestGenerateQRUseCase_Execute_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gen := mocks.NewMockGenerator(ctrl)
	uc := generateqr.NewUseCase(gen)

	gen.EXPECT().Generate(gomock.Any()).Return(nil, errors.New("encode failed"))

	_, err := uc.Execute(generateqr.Request{ApprovalURL: "x"})

	require.Error(t, err)
}

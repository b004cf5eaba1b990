package generateqr

import (
	"github.com/Xausdorf/paypal-relay/internal/domain/qrcode"
)

type Request struct {
	ApprovalURL string
}

type UseCase struct {
	generator qrcode.Generator
}

func NewUseCase(generator qrcode.Generator) *UseCase {
	return &UseCase{generator: generator}
}

func (uc *UseCase) Execute(req Request) ([]byte, error) {
	return uc.generator.Generate(req.ApprovalURL)
}

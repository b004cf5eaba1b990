package qrcode

//go:generate mockgen -destination=../../usecase/mocks/generator_mock.go -package=mocks . Generator

type Generator interface {
	Generate(content string) ([]byte, error)
}

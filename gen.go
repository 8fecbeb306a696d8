package mumgo

//go:generate mockgen -package transportmock -source internal/driver/types.go -destination internal/mocks/transport/transport.go

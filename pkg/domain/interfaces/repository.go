package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Project() ProjectRepository
	ControlAccount() ControlAccountRepository
	EVMRecord() EVMRecordRepository
	Risk() RiskRepository
	RiskResponse() RiskResponseRepository

	Close() error
}

package ports

import "crusoe/internal/domain/economy"

type StepMetrics interface {
	RecordSuccess(action economy.Action, alive bool)
	RecordConflict()
	RecordFailure()
}

package domain

// RecoveryStage enumerates the positions of a password recovery session.
type RecoveryStage int

const (
	RecoveryStageIdentity RecoveryStage = iota + 1
	RecoveryStageSecurityAnswer
	RecoveryStageReset
)

// String renders the stage for logging.
func (s RecoveryStage) String() string {
	switch s {
	case RecoveryStageIdentity:
		return "identity"
	case RecoveryStageSecurityAnswer:
		return "security_answer"
	case RecoveryStageReset:
		return "reset"
	default:
		return "unknown"
	}
}

// RecoverySession is the transient state of an in-flight recovery flow. It is
// never persisted: abandoning a session leaves nothing behind beyond whatever
// attempts were logged.
type RecoverySession struct {
	ID           string
	Stage        RecoveryStage
	AccountEmail string
	QuestionID   string
}

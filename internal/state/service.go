package state

import "fmt"

// ServiceState is what the probes observed about the database at one instant.
// It is derived fresh for every reconciliation and never stored.
type ServiceState struct {
	LockFilePresent bool // mysql/socket.lock exists
	ProcessRunning  bool // a mysqld process is in the process table
}

func (s ServiceState) String() string {
	return fmt.Sprintf("lock=%t running=%t", s.LockFilePresent, s.ProcessRunning)
}

// Action is the corrective step for one ServiceState.
type Action string

const (
	// ActionStart starts a database that is fully down.
	ActionStart Action = "start"

	// ActionNone leaves a healthy database alone.
	ActionNone Action = "none"

	// ActionRestart kills an orphaned process that lost its lock file and starts cleanly.
	ActionRestart Action = "restart"

	// ActionRecoverStaleLock removes a lock file left behind by a dead process and starts.
	ActionRecoverStaleLock Action = "recover-stale-lock"
)

// Decision pairs an Action with the reason shown to the user.
type Decision struct {
	Action Action
	Reason string
}

// Decide maps an observed state to its single corrective action. The four
// combinations are exhaustive; every action is followed by the file-import grant.
func Decide(s ServiceState) Decision {
	switch {
	case !s.LockFilePresent && !s.ProcessRunning:
		return Decision{
			Action: ActionStart,
			Reason: "no socket.lock file and MySQL is not running",
		}
	case s.LockFilePresent && s.ProcessRunning:
		return Decision{
			Action: ActionNone,
			Reason: "socket.lock file exists and MySQL is running",
		}
	case !s.LockFilePresent && s.ProcessRunning:
		return Decision{
			Action: ActionRestart,
			Reason: "MySQL is running but no socket.lock file was found",
		}
	default:
		return Decision{
			Action: ActionRecoverStaleLock,
			Reason: "socket.lock file exists but MySQL is not running",
		}
	}
}

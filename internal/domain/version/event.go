package version

// Event names a state change observable by listeners.
type Event string

// Events fired by the manager.
const (
	EventVersionAbsorbed   Event = "app-version:events:version-absorbed"
	EventCommitIncremented Event = "app-version:events:commit-incremented"
	EventMajorIncremented  Event = "app-version:events:major-incremented"
	EventMinorIncremented  Event = "app-version:events:minor-incremented"
	EventPatchIncremented  Event = "app-version:events:patch-incremented"
	EventTimestampUpdated  Event = "app-version:events:timestamp-updated"
)

// Short returns the event name without the namespace.
func (e Event) Short() string {
	const prefix = "app-version:events:"

	if len(e) > len(prefix) && string(e[:len(prefix)]) == prefix {
		return string(e[len(prefix):])
	}

	return string(e)
}

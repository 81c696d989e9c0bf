package ecs

// System is one step of a frame. Query and Singleton fields of a system are
// bound to storage when the system is registered with a Scheduler; any other
// fields are the system's own state and persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// Package events provides a small in-process event system that decouples
// the request-handling services from background job creation. A service
// emits a JobRequestEvent when something should happen asynchronously
// (spawning the next occurrence of a recurring task, firing a reminder);
// registered handlers turn those events into jobs without the service
// knowing about the job package.
package events

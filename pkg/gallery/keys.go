package gallery

import "fmt"

// Redis key pattern helpers
//
// All keys and Pub/Sub channels are namespaced by workspace name so multiple
// galleries can coexist on a single Redis server.
//
// Key pattern: racksmith:{workspace}:{entity}:...
// Channel pattern: racksmith:{workspace}:{event_type}_events

// EntryKey returns the Redis key holding one revision record.
// Pattern: racksmith:{workspace}:entry:{module_key}:{identity}
func EntryKey(workspace, moduleKey, identity string) string {
	return fmt.Sprintf("racksmith:%s:entry:%s:%s", workspace, moduleKey, identity)
}

// ThreadKey returns the Redis key of a module key's revision thread ZSET
// (member = revision identity, score = revision number).
// Pattern: racksmith:{workspace}:thread:{module_key}
func ThreadKey(workspace, moduleKey string) string {
	return fmt.Sprintf("racksmith:%s:thread:%s", workspace, moduleKey)
}

// AppendEventsChannel returns the Pub/Sub channel carrying append events.
// Pattern: racksmith:{workspace}:append_events
func AppendEventsChannel(workspace string) string {
	return fmt.Sprintf("racksmith:%s:append_events", workspace)
}

// entryScanPattern matches every revision record key in a workspace.
func entryScanPattern(workspace string) string {
	return fmt.Sprintf("racksmith:%s:entry:*", workspace)
}

// threadScanPattern matches every revision thread key in a workspace.
func threadScanPattern(workspace string) string {
	return fmt.Sprintf("racksmith:%s:thread:*", workspace)
}

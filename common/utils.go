package common

var Version = "v0.1.0"

var SQLitePath = "jewel-studio.db"

// SafeSendBool sends on ch and reports false when ch is already closed.
func SafeSendBool(ch chan bool, value bool) (closed bool) {
	defer func() {
		if recover() != nil {
			closed = true
		}
	}()

	ch <- value
	return false
}

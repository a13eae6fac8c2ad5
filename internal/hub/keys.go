package hub

import "fmt"

// Key scheme on the backing store. Everything the hub owns lives under one
// namespace so unrelated tenants can share a Redis instance.
//
//	<ns>:current:<symbol>          latest snapshot
//	<ns>:history:<symbol>          bounded history list, newest first
//	<ns>:signals:queue             global signal queue
//	<ns>:signals:latest:<symbol>   latest signal per symbol
//	<ns>:signals:seq               total signals ever enqueued
//	<ns>:signals:cursor:<consumer> per-consumer read position
//	<ns>:<topic>                   pub/sub channels

func currentKey(ns, symbol string) string {
	return fmt.Sprintf("%s:current:%s", ns, symbol)
}

func currentKeyPrefix(ns string) string {
	return ns + ":current:"
}

func historyKey(ns, symbol string) string {
	return fmt.Sprintf("%s:history:%s", ns, symbol)
}

func queueKey(ns string) string {
	return ns + ":signals:queue"
}

func latestSignalKey(ns, symbol string) string {
	return fmt.Sprintf("%s:signals:latest:%s", ns, symbol)
}

func seqKey(ns string) string {
	return ns + ":signals:seq"
}

func cursorKey(ns, consumer string) string {
	return fmt.Sprintf("%s:signals:cursor:%s", ns, consumer)
}

func channelName(ns, topic string) string {
	return fmt.Sprintf("%s:%s", ns, topic)
}

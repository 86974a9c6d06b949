package extdb

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

var credentialsPattern = regexp.MustCompile(`:[^:@/]*@`)

// RedactURI hides the password portion of a connection string for logging.
func RedactURI(uri string) string {
	return credentialsPattern.ReplaceAllString(uri, ":***@")
}

// HostOf returns the host list of a connection string, without credentials or path.
func HostOf(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return "unknown"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	if end := strings.IndexAny(rest, "/?"); end >= 0 {
		rest = rest[:end]
	}
	if rest == "" {
		return "unknown"
	}
	return rest
}

// ResolveURI returns the connection string to dial and the database it targets.
// A database named in the path segment wins; otherwise defaultDB is inserted into
// the path exactly once, ahead of any query options.
func ResolveURI(raw, defaultDB string) (string, string) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || rest == "" {
		return raw, defaultDB
	}

	hostStart := 0
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		hostStart = at + 1
	}
	tail := rest[hostStart:]
	prefix := scheme + "://" + rest[:hostStart]

	slash := strings.IndexByte(tail, '/')
	query := strings.IndexByte(tail, '?')

	switch {
	case slash >= 0 && (query < 0 || slash < query):
		path := tail[slash+1:]
		if q := strings.IndexByte(path, '?'); q >= 0 {
			path = path[:q]
		}
		if path != "" {
			if name, err := url.PathUnescape(path); err == nil && name != "" {
				return raw, name
			}
			return raw, defaultDB
		}
		// "host/" or "host/?opts"
		return prefix + tail[:slash+1] + defaultDB + tail[slash+1:], defaultDB
	case query >= 0:
		return prefix + tail[:query] + "/" + defaultDB + tail[query:], defaultDB
	default:
		return prefix + tail + "/" + defaultDB, defaultDB
	}
}

func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

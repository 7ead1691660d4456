// Package event defines the shared event representation used by every
// stage of the compiler: the input records the reader decodes, the
// semantic records the emitter buffers, and the intermediate records the
// state machine builds while assembling a navigation.
package event

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is a single browser instrumentation record, represented as an open
// map so that it can carry any of the ~40 fields recognized across the
// input and output vocabularies (spec §3, §6) without a giant struct of
// mostly-empty optional fields. Known fields are reached through the typed
// accessors below; anything else (message, msg, tab_count, version, ...)
// is read and written directly as map keys.
type Event map[string]interface{}

// New creates an event with the given name and time.
func New(name string, t int64) Event {
	return Event{"event": name, "time": t}
}

// Derive mirrors the Python source's Event(orig_event, name=None, keys=None,
// **kwargs) factory: it copies the original event's fields, optionally
// renames it, and applies overrides. If keys is non-nil, only those keys
// (plus "time") are copied from the original.
func Derive(orig Event, name string, keys []string, kwargs Event) Event {
	data := Event{}
	if keys != nil {
		for _, k := range keys {
			if v, ok := orig[k]; ok {
				data[k] = v
			}
		}
		if t, ok := orig["time"]; ok {
			data["time"] = t
		}
	} else {
		for k, v := range orig {
			data[k] = v
		}
	}
	for k, v := range kwargs {
		data[k] = v
	}
	if name != "" {
		data["event"] = name
	} else if _, ok := data["event"]; !ok {
		data["event"] = orig["event"]
	}
	return data
}

// Clone returns a shallow copy.
func (e Event) Clone() Event {
	out := make(Event, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Name returns the "event" field.
func (e Event) Name() string {
	s, _ := e["event"].(string)
	return s
}

// Time returns the "time" field as milliseconds, coercing from whatever
// numeric type the JSON decoder produced.
func (e Event) Time() int64 {
	return toInt64(e["time"])
}

// Win returns the "win" field.
func (e Event) Win() (string, bool) {
	s, ok := e["win"].(string)
	return s, ok
}

// TabID returns the "tabId" field.
func (e Event) TabID() (string, bool) {
	s, ok := e["tabId"].(string)
	return s, ok
}

// TabIndex returns the "tabIndex" field.
func (e Event) TabIndex() (int, bool) {
	v, ok := e["tabIndex"]
	if !ok {
		return 0, false
	}
	return int(toInt64(v)), true
}

// Index returns the "index" field (used by gotoHistoryIndex).
func (e Event) Index() (int, bool) {
	v, ok := e["index"]
	if !ok {
		return 0, false
	}
	return int(toInt64(v)), true
}

// Href returns the "href" field.
func (e Event) Href() (string, bool) {
	s, ok := e["href"].(string)
	return s, ok
}

// RawURL returns the "url" field verbatim (no glossary fallback logic).
func (e Event) RawURL() (string, bool) {
	s, ok := e["url"].(string)
	return s, ok
}

// Action returns the "action" field (used by form_submit).
func (e Event) Action() (string, bool) {
	s, ok := e["action"].(string)
	return s, ok
}

// FromURL returns the "from_url" field.
func (e Event) FromURL() (string, bool) {
	s, ok := e["from_url"].(string)
	return s, ok
}

// ToURL returns the "to_url" field.
func (e Event) ToURL() (string, bool) {
	s, ok := e["to_url"].(string)
	return s, ok
}

// Cause returns the "cause" field. Note this collides in name with the
// *output* navigation event's "cause" string field; on input events this
// is the free-form cause annotation some browsers attach (e.g. a
// "javascript:" or "http" URL).
func (e Event) Cause() (string, bool) {
	s, ok := e["cause"].(string)
	return s, ok
}

// IsTopLevel returns whether the event is top-level, defaulting to true
// when the field is absent (spec glossary: "Top-level").
func (e Event) IsTopLevel() bool {
	v, ok := e["isTopLevel"]
	if !ok {
		return true
	}
	b, ok := v.(bool)
	if !ok {
		return true
	}
	return b
}

// LastKeyDownTime returns the "lastKeyDownTime" field.
func (e Event) LastKeyDownTime() (int64, bool) {
	v, ok := e["lastKeyDownTime"]
	if !ok {
		return 0, false
	}
	return toInt64(v), true
}

// Version returns the "version" field as a string regardless of whether it
// was encoded as a JSON string or number.
func (e Event) Version() string {
	switch v := e["version"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return jsonNumberString(v)
	}
}

// URL implements the spec glossary's "URL of event": LINK_CLICK uses href,
// form_submit uses action, everything else uses url.
func (e Event) URL() (string, bool) {
	switch e.Name() {
	case LinkClick:
		return e.Href()
	case FormSubmit:
		return e.Action()
	default:
		return e.RawURL()
	}
}

// MarshalJSON round-trips through jsoniter for speed and to keep numeric
// encoding consistent with the reader's decode path.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(e))
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func jsonNumberString(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

package event_test

import (
	"testing"

	"github.com/marcelsud/artemis-inbox/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapNamer map[int64]string

func (m mapNamer) Name(code int64) string {
	if name, ok := m[code]; ok {
		return name
	}
	return event.UnknownName(code)
}

var labels = mapNamer{196893: "intelligent analysis event"}

func TestParse(t *testing.T) {
	parser := event.NewParser(labels)

	t.Run("single event object becomes one record", func(t *testing.T) {
		raw := []byte(`{
			"method": "OnEventNotify",
			"params": {
				"ability": "event_vss",
				"sendTime": "2025-10-21T10:00:00.000+08:00",
				"events": {
					"eventId": "A1",
					"eventType": 196893,
					"happenTime": "2025-10-21T09:59:58.000+08:00",
					"srcIndex": "cam-1",
					"srcName": "Gate",
					"srcParentIndex": "nvr-1",
					"srcType": "camera",
					"status": 0,
					"timeout": 30
				}
			}
		}`)

		env := parser.Parse(raw)

		assert.Equal(t, event.MethodNotify, env.Method)
		assert.True(t, env.IsNotification())
		assert.Equal(t, "event_vss", env.Ability)
		assert.Equal(t, "2025-10-21T10:00:00.000+08:00", env.SendTime)
		require.Len(t, env.Events, 1)
		rec := env.Events[0]
		assert.Equal(t, 1, rec.Index)
		assert.Equal(t, "A1", rec.EventID)
		assert.Equal(t, int64(196893), rec.EventType)
		assert.Equal(t, "intelligent analysis event", rec.EventTypeName)
		assert.Equal(t, "2025-10-21T09:59:58.000+08:00", rec.HappenTime)
		assert.Equal(t, "cam-1", rec.SrcIndex)
		assert.Equal(t, "Gate", rec.SrcName)
		assert.Equal(t, "nvr-1", rec.SrcParentIndex)
		assert.Equal(t, "camera", rec.SrcType)
		assert.Equal(t, int64(0), rec.Status)
		assert.Equal(t, int64(30), rec.Timeout)
		assert.JSONEq(t, string(raw), string(env.Raw))
		assert.Contains(t, string(rec.Raw), `"eventId": "A1"`)
	})

	t.Run("array keeps order with one-based indices", func(t *testing.T) {
		raw := []byte(`{"method":"OnEventNotify","params":{"events":[
			{"eventId":"a","eventType":1},
			{"eventId":"b","eventType":2},
			{"eventId":"c","eventType":3}
		]}}`)

		env := parser.Parse(raw)

		require.Len(t, env.Events, 3)
		for i, id := range []string{"a", "b", "c"} {
			assert.Equal(t, i+1, env.Events[i].Index)
			assert.Equal(t, id, env.Events[i].EventID)
		}
	})

	t.Run("misspelled fields resolve like the correct ones", func(t *testing.T) {
		correct := parser.Parse([]byte(`{"method":"OnEventNotify","params":{"events":
			{"eventType":196893,"happenTime":"t1","srcType":"camera"}}}`))
		typo := parser.Parse([]byte(`{"method":"OnEventNotify","params":{"events":
			{"eventiype":196893,"hapenTime":"t1","srciype":"camera"}}}`))

		require.Len(t, typo.Events, 1)
		assert.Equal(t, correct.Events[0].EventType, typo.Events[0].EventType)
		assert.Equal(t, correct.Events[0].EventTypeName, typo.Events[0].EventTypeName)
		assert.Equal(t, correct.Events[0].HappenTime, typo.Events[0].HappenTime)
		assert.Equal(t, correct.Events[0].SrcType, typo.Events[0].SrcType)
	})

	t.Run("correct spelling wins when both are present", func(t *testing.T) {
		env := parser.Parse([]byte(`{"params":{"events":
			{"eventType":1,"eventiype":2,"happenTime":"right","hapenTime":"wrong","srcType":null,"srciype":"fallback"}}}`))

		require.Len(t, env.Events, 1)
		assert.Equal(t, int64(1), env.Events[0].EventType)
		assert.Equal(t, "right", env.Events[0].HappenTime)
		assert.Equal(t, "fallback", env.Events[0].SrcType)
	})

	t.Run("unknown event type embeds the code", func(t *testing.T) {
		env := parser.Parse([]byte(`{"params":{"events":{"eventType":999999}}}`))

		require.Len(t, env.Events, 1)
		assert.Contains(t, env.Events[0].EventTypeName, "999999")
	})

	t.Run("missing fields fall back to zero values", func(t *testing.T) {
		env := parser.Parse([]byte(`{"method":"OnEventNotify","params":{"events":[{}]}}`))

		require.Len(t, env.Events, 1)
		rec := env.Events[0]
		assert.Equal(t, 1, rec.Index)
		assert.Empty(t, rec.EventID)
		assert.Zero(t, rec.EventType)
		assert.Equal(t, "unknown event type (0)", rec.EventTypeName)
		assert.Empty(t, rec.HappenTime)
		assert.Empty(t, rec.SrcType)
	})

	t.Run("envelope without events", func(t *testing.T) {
		for _, raw := range []string{
			`{"method":"OnEventNotify","params":{"sendTime":"s"}}`,
			`{"method":"OnEventNotify","params":{"sendTime":"s","events":"nope"}}`,
			`{"method":"OnEventNotify","params":{"sendTime":"s","events":42}}`,
		} {
			env := parser.Parse([]byte(raw))
			assert.Equal(t, event.MethodNotify, env.Method, raw)
			assert.Equal(t, "s", env.SendTime, raw)
			assert.NotNil(t, env.Events, raw)
			assert.Empty(t, env.Events, raw)
		}
	})

	t.Run("ability is read from the root or from params", func(t *testing.T) {
		nested := parser.Parse([]byte(`{"method":"OnEventNotify","params":{"ability":"event_vss","sendTime":"t1"}}`))
		assert.Equal(t, "event_vss", nested.Ability)
		assert.Equal(t, "t1", nested.SendTime)

		both := parser.Parse([]byte(`{"ability":"root","params":{"ability":"nested"}}`))
		assert.Equal(t, "root", both.Ability)

		none := parser.Parse([]byte(`{"params":{"sendTime":"t1"}}`))
		assert.Empty(t, none.Ability)
	})

	t.Run("method defaults to unknown", func(t *testing.T) {
		env := parser.Parse([]byte(`{"ability":"event_vss"}`))
		assert.Equal(t, event.UnknownMethod, env.Method)
		assert.Equal(t, "event_vss", env.Ability)
		assert.False(t, env.IsNotification())
	})

	t.Run("structurally malformed input never panics", func(t *testing.T) {
		for _, raw := range []string{``, `null`, `[]`, `"text"`, `{"params":[1,2]}`, `{"params":{"events":[1,"x",null]}}`, `{not json`} {
			assert.NotPanics(t, func() { parser.Parse([]byte(raw)) }, raw)
		}
	})

	t.Run("nil namer falls back to unknown labels", func(t *testing.T) {
		env := event.NewParser(nil).Parse([]byte(`{"params":{"events":{"eventType":196893}}}`))
		require.Len(t, env.Events, 1)
		assert.Equal(t, "unknown event type (196893)", env.Events[0].EventTypeName)
	})
}

func TestEnvelopeIsNotification(t *testing.T) {
	parser := event.NewParser(nil)
	assert.True(t, parser.Parse([]byte(`{"method":"OnEventNotify"}`)).IsNotification())
	assert.False(t, parser.Parse([]byte(`{"method":"Other"}`)).IsNotification())
	assert.False(t, parser.Parse([]byte(`a=1`)).IsNotification())
}

func TestEventCount(t *testing.T) {
	n, ok := event.EventCount([]byte(`{"params":{"events":[{},{}]}}`))
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = event.EventCount([]byte(`{"params":{"events":{}}}`))
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = event.EventCount([]byte(`{"params":{}}`))
	assert.False(t, ok)
}

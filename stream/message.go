package stream

import (
	"encoding/json"
	"strconv"

	"github.com/plus3/orrery/sim"
)

type frameMessage struct {
	Type      string             `json:"type"`
	Frame     uint64             `json:"frame"`
	Elapsed   float64            `json:"elapsed"`
	Camera    sim.CameraFrame    `json:"camera"`
	Starfield sim.StarfieldFrame `json:"starfield"`
	Bodies    []sim.BodyFrame    `json:"bodies"`
}

// helloMessage carries what does not change per frame.
type helloMessage struct {
	Type   string          `json:"type"`
	Camera sim.CameraFrame `json:"camera"`
	Stars  []sim.Vec3      `json:"stars"`
}

// clientMessage is any message a client may send:
//
//	{"type":"speed","body":"Mars","value":"0.01"}
//	{"type":"resize","width":390,"height":844}
type clientMessage struct {
	Type   string          `json:"type"`
	Body   string          `json:"body"`
	Value  json.RawMessage `json:"value"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
}

// decodeCommand turns a client message into a simulation command. Anything
// malformed is dropped.
func decodeCommand(data []byte) (sim.Command, bool) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, false
	}

	switch msg.Type {
	case "speed":
		if msg.Body == "" || len(msg.Value) == 0 {
			return nil, false
		}
		return sim.SpeedCommand{Body: msg.Body, Value: rawText(msg.Value)}, true
	case "resize":
		if msg.Width <= 0 || msg.Height <= 0 {
			return nil, false
		}
		return sim.ResizeCommand{Width: msg.Width, Height: msg.Height}, true
	}
	return nil, false
}

// rawText accepts the value either as a JSON string or a bare number.
func rawText(raw json.RawMessage) string {
	if s, err := strconv.Unquote(string(raw)); err == nil {
		return s
	}
	return string(raw)
}

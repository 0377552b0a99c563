package caller

import (
	"encoding/json"
	"strings"
)

// envelopeKey is the top-level key Ansible modules expect on stdin.
const envelopeKey = "ANSIBLE_MODULE_ARGS"

// rawParamsKey carries the space-joined positional arguments.
const rawParamsKey = "_raw_params"

// buildEnvelope serializes positional and keyword arguments into the
// module-args envelope. Key order inside the payload is not part of the
// contract; consumers must compare structurally.
func buildEnvelope(args []string, kwargs map[string]any) ([]byte, error) {
	payload := make(map[string]any, len(kwargs)+1)
	for k, v := range kwargs {
		payload[k] = v
	}
	payload[rawParamsKey] = strings.Join(args, " ")
	return json.Marshal(map[string]any{envelopeKey: payload})
}

package engine

import (
	"github.com/meshwire/basp/codec"
	"github.com/meshwire/basp/node"
)

func marshalHandshakePayload(aid node.ActorId, sigs map[node.InterfaceSignature]struct{}) ([]byte, error) {
	signatures := make([]string, 0, len(sigs))
	for s := range sigs {
		signatures = append(signatures, string(s))
	}
	return codec.MarshalHandshake(uint32(aid), signatures), nil
}

func unmarshalHandshakePayload(data []byte) (node.ActorId, map[node.InterfaceSignature]struct{}, error) {
	actorID, signatures, err := codec.UnmarshalHandshake(data)
	if err != nil {
		return node.InvalidActorId, nil, err
	}

	sigs := make(map[node.InterfaceSignature]struct{}, len(signatures))
	for _, s := range signatures {
		sigs[node.InterfaceSignature(s)] = struct{}{}
	}

	return node.ActorId(actorID), sigs, nil
}

func marshalDispatchPayload(stack []node.Id, message []byte) ([]byte, error) {
	forwardingStack := make([]uint64, len(stack))
	for i, n := range stack {
		forwardingStack[i] = uint64(n)
	}
	return codec.MarshalDispatch(forwardingStack, message), nil
}

func unmarshalDispatchPayload(data []byte) ([]node.Id, []byte, error) {
	forwardingStack, message, err := codec.UnmarshalDispatch(data)
	if err != nil {
		return nil, nil, err
	}

	stack := make([]node.Id, len(forwardingStack))
	for i, n := range forwardingStack {
		stack[i] = node.Id(n)
	}

	return stack, message, nil
}

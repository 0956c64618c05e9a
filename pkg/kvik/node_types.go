package kvik

// NodeType identifies the role a peer plays on the local layer.
type NodeType uint8

const (
	NodeUnknown NodeType = 0x00
	NodeClient  NodeType = 0x01
	NodeGateway NodeType = 0x02
	NodeRelay   NodeType = 0x03
)

func (t NodeType) String() string {
	switch t {
	case NodeUnknown:
		return "UNKNOWN"
	case NodeClient:
		return "CLIENT"
	case NodeGateway:
		return "GATEWAY"
	case NodeRelay:
		return "RELAY"
	default:
		return "INVALID"
	}
}

package mcp

// Wire shapes for the MCP methods the gateway serves: initialize,
// tools/list, tools/call, resources/list and resources/read.

// Implementation names one side of the MCP session.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams is what a client announces on initialize. The gateway
// negotiates nothing; the client identity is only logged.
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ClientInfo      Implementation `json:"clientInfo"`
}

// InitializeResult advertises the HR tools and the key-management
// resources. Neither list changes at runtime.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ServerInfo      Implementation `json:"serverInfo"`
	Capabilities    Capabilities   `json:"capabilities"`
}

// Capabilities lists the MCP features the gateway serves.
type Capabilities struct {
	Tools     *struct{} `json:"tools,omitempty"`
	Resources *struct{} `json:"resources,omitempty"`
}

// ToolsListResult is the result of tools/list.
type ToolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

// ToolsCallParams names the HR tool to run and its arguments.
type ToolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolsCallResult carries a tool's JSON value twice: as text in Content for
// clients that only read text, and decoded in StructuredContent.
type ToolsCallResult struct {
	Content           []Content `json:"content"`
	StructuredContent any       `json:"structuredContent,omitempty"`

	// IsError marks a refusal by a business rule. Protocol and store
	// failures are JSON-RPC errors instead.
	IsError bool `json:"isError,omitempty"`
}

// ToolError is the structured content of a tool result whose call was
// refused by a business rule.
type ToolError struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorData is the data member of JSON-RPC errors raised by tools/call.
type ErrorData struct {
	Kind  string `json:"kind"`
	Tool  string `json:"tool,omitempty"`
	Field string `json:"field,omitempty"`
	Scope string `json:"scope,omitempty"`
}

// Content is one text block of a tool result. Tools only produce JSON text.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ResourcesListResult is the result of resources/list.
type ResourcesListResult struct {
	Resources []ResourceDefinition `json:"resources"`
}

// ResourcesReadParams names the resource to read.
type ResourcesReadParams struct {
	URI string `json:"uri"`
}

// ResourcesReadResult is the result of resources/read.
type ResourcesReadResult struct {
	Contents []ResourceContent `json:"contents"`
}

// ResourceContent is a resource rendered as text.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

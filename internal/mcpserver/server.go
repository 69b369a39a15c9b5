// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes storagekit tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/storagekit/internal/itemservice"
	"github.com/starford/storagekit/internal/models"
	"github.com/starford/storagekit/pkg/storage"
)

const contractURI = "storagekit://contract"

// Server wraps the MCP server with storagekit tools.
type Server struct {
	mcp       *server.MCPServer
	svc       *itemservice.Service
	collision storage.CollisionOption
}

// New creates a new MCP server with all storagekit tools registered.
// collision is used by tools whose caller does not pick an option.
func New(svc *itemservice.Service, collision storage.CollisionOption) *Server {
	s := &Server{svc: svc, collision: collision}

	s.mcp = server.NewMCPServer(
		"storagekit",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	collisionArg := mcp.WithString("collision",
		mcp.Description("What to do when the target name is taken: fail, rename, overwrite or open"),
		mcp.Enum(storage.CollisionNames()...),
	)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List the files and folders directly inside a folder."),
		mcp.WithString("dir", mcp.Description("Folder relative to the storage root (empty for the root)")),
	), s.listItems)

	s.mcp.AddTool(mcp.NewTool("stat_item",
		mcp.WithDescription("Describe a single file or folder: kind, size, checksum and modification time."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the item")),
	), s.statItem)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read the full content of a text file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the file (e.g. folder/file.txt)")),
	), s.readFile)

	s.mcp.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Replace the content of a text file, creating it and its parent folders when missing. "+
			"Read the contract first via get_storage_contract or the "+contractURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the file")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New file content")),
	), s.writeFile)

	s.mcp.AddTool(mcp.NewTool("create_file",
		mcp.WithDescription("Create an empty file, creating missing parent folders."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the new file")),
		collisionArg,
	), s.createFile)

	s.mcp.AddTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create a folder, creating missing parent folders."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the new folder")),
		collisionArg,
	), s.createFolder)

	s.mcp.AddTool(mcp.NewTool("copy_item",
		mcp.WithDescription("Copy a file or a whole folder tree into a destination folder."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Relative path of the item to copy")),
		mcp.WithString("destination", mcp.Description("Destination folder (empty for the root)")),
		mcp.WithString("name", mcp.Description("Optional new name for the copy")),
		collisionArg,
	), s.copyItem)

	s.mcp.AddTool(mcp.NewTool("move_item",
		mcp.WithDescription("Move a file or a whole folder tree into a destination folder."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Relative path of the item to move")),
		mcp.WithString("destination", mcp.Description("Destination folder (empty for the root)")),
		mcp.WithString("name", mcp.Description("Optional new name at the destination")),
		collisionArg,
	), s.moveItem)

	s.mcp.AddTool(mcp.NewTool("rename_item",
		mcp.WithDescription("Rename a file or folder in place. Never replaces an existing item."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the item")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New base name")),
	), s.renameItem)

	s.mcp.AddTool(mcp.NewTool("remove_item",
		mcp.WithDescription("Delete a file, or a folder together with everything inside it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the item")),
	), s.removeItem)

	s.mcp.AddTool(mcp.NewTool("search_items",
		mcp.WithDescription("Search catalogued files and folders by name or path."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchItems)

	s.mcp.AddTool(mcp.NewTool("upload_file",
		mcp.WithDescription("Store a binary file fetched from an http(s) URL or decoded from a base64 data: URI."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:<mime>;base64,<data> URI")),
		mcp.WithString("dir", mcp.Description("Destination folder (empty for the root)")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when omitted")),
		collisionArg,
	), s.uploadFile)

	s.mcp.AddTool(mcp.NewTool("get_storage_contract",
		mcp.WithDescription("Returns the storagekit path and collision contract. "+
			"Call this before creating, copying or moving items."),
	), s.getStorageContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Storage Contract",
			mcp.WithResourceDescription("Path rules and collision semantics of the storage tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.List(ctx, req.GetString("dir", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("empty folder"), nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it.IsFolder() {
			lines = append(lines, it.Path+"/")
			continue
		}
		lines = append(lines, it.Path)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) statItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.Stat(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(info)
}

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.svc.ReadText(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) writeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.WriteText(ctx, path, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("written: %s (%d bytes)", info.Path, info.Size)), nil
}

func (s *Server) createFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opt, err := s.option(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.CreateFile(ctx, path, opt)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("created: " + info.Path), nil
}

func (s *Server) createFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opt, err := s.option(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.CreateFolder(ctx, path, opt)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("created: " + info.Path + "/"), nil
}

func (s *Server) copyItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.transfer(ctx, req, "copied", s.svc.Copy)
}

func (s *Server) moveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.transfer(ctx, req, "moved", s.svc.Move)
}

type transferFunc func(ctx context.Context, src, dstDir string, opt storage.CollisionOption, name string) (*models.ItemInfo, error)

func (s *Server) transfer(ctx context.Context, req mcp.CallToolRequest, verb string, fn transferFunc) (*mcp.CallToolResult, error) {
	src, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opt, err := s.option(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := fn(ctx, src, req.GetString("destination", ""), opt, req.GetString("name", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s -> %s", verb, src, info.Path)), nil
}

func (s *Server) renameItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.Rename(ctx, path, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed: %s -> %s", path, info.Path)), nil
}

func (s *Server) removeItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Remove(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("removed: " + path), nil
}

func (s *Server) searchItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getStorageContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(StorageContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     StorageContract,
		},
	}, nil
}

// option reads the optional "collision" argument, falling back to the
// server default.
func (s *Server) option(req mcp.CallToolRequest) (storage.CollisionOption, error) {
	raw := req.GetString("collision", "")
	if raw == "" {
		return s.collision, nil
	}
	return storage.ParseCollisionOption(raw)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

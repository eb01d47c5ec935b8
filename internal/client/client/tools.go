package client

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
)

const toolsPath = "/api/v1/tools/pdf/"

func (c *HTTPClient) Merge(ctx context.Context, files []Upload) (*models.ToolResult, error) {
	return c.runTool(ctx, models.ToolMerge, files, nil)
}

func (c *HTTPClient) Compress(ctx context.Context, files []Upload, level models.CompressionLevel) (*models.ToolResult, error) {
	return c.runTool(ctx, models.ToolCompress, files, map[string]string{"compression_level": string(level)})
}

func (c *HTTPClient) Protect(ctx context.Context, files []Upload, password string, perms models.Permissions) (*models.ToolResult, error) {
	p, err := json.Marshal(perms)
	if err != nil {
		return nil, err
	}
	return c.runTool(ctx, models.ToolProtect, files, map[string]string{"password": password, "permissions": string(p)})
}

// runTool uploads files to the tool endpoint. A JSON answer carries download
// URLs; an application/pdf answer is the result itself.
func (c *HTTPClient) runTool(ctx context.Context, tool models.Tool, files []Upload, fields map[string]string) (*models.ToolResult, error) {
	body, contentType, err := multipartBody("files", files, fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s form: %w", tool, err)
	}

	header, data, err := c.send(ctx, request{
		method:      http.MethodPost,
		path:        toolsPath + string(tool),
		body:        body,
		contentType: contentType,
		auth:        true,
	})
	if err != nil {
		return nil, err
	}

	if mt, _, _ := mime.ParseMediaType(header.Get("Content-Type")); mt == "application/pdf" {
		res := &models.ToolResult{Inline: data}
		if _, disp, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
			res.InlineName = disp["filename"]
		}
		return res, nil
	}

	var res models.ToolResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadResponse, tool, err)
	}
	return &res, nil
}

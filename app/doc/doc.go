package doc

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
)

func swaggerJSON(addr string) gin.HandlerFunc {
	return func(c *gin.Context) {
		originalJSON, err := swag.ReadDoc()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read Swagger doc"})
			return
		}

		var swaggerData map[string]interface{}
		if err := json.Unmarshal([]byte(originalJSON), &swaggerData); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Swagger doc"})
			return
		}

		swaggerData["servers"] = servers(addr)

		components, _ := swaggerData["components"].(map[string]interface{})
		if components == nil {
			components = make(map[string]interface{})
			swaggerData["components"] = components
		}
		securitySchemes, _ := components["securitySchemes"].(map[string]interface{})
		if securitySchemes == nil {
			securitySchemes = make(map[string]interface{})
			components["securitySchemes"] = securitySchemes
		}
		securitySchemes["BearerAuth"] = map[string]interface{}{
			"type":         "http",
			"scheme":       "bearer",
			"bearerFormat": "PASETO",
			"description":  "Enter a PASETO v2 local token",
		}

		modifiedJSON, err := json.Marshal(swaggerData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate modified Swagger doc"})
			return
		}

		c.Data(http.StatusOK, "application/json", modifiedJSON)
	}
}

// servers points the docs at the address the API listens on
func servers(addr string) []map[string]interface{} {
	out := []map[string]interface{}{}
	if addr != "" {
		out = append(out, map[string]interface{}{
			"url":         "http://" + addr + "/api/v1",
			"description": "Configured Server",
		})
	}
	return append(out, map[string]interface{}{
		"url":         "/api/v1",
		"description": "Same Origin",
	})
}

const elementsHTML = `
<!DOCTYPE html>
<html>
<head>
    <title>Categorical Market API Documentation</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
    <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
    <style>
        body { margin: 0; padding: 0; height: 100vh; }
        elements-api { height: 100%; }
    </style>
</head>
<body>
    <elements-api
        apiDescriptionUrl="/swagger/doc.json"
        router="hash"
        layout="sidebar"
        tryItCredentialsPolicy="include"
        hideInternal="false"
    ></elements-api>
</body>
</html>`

func serveElements(c *gin.Context) {
	c.Header("Content-Type", "text/html")
	c.String(http.StatusOK, elementsHTML)
}

// Init mounts the OpenAPI document and its reader. The document itself is
// registered with swag by the docs package.
func Init(r *gin.Engine, addr string) {
	r.GET("/swagger/doc.json", swaggerJSON(addr))
	r.GET("/docs/*any", serveElements)
}

// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/intelligence/run": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Starts a pass over all active tenants in the background. Requires the system API key.",
                "produces": ["application/json"],
                "tags": ["Intelligence"],
                "summary": "Trigger the nightly intelligence pass",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/domain.RunTriggerResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/tenants/{tenantId}/intelligence/overdue": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Customers past their smart threshold, ranked by priority score (highest first).",
                "produces": ["application/json"],
                "tags": ["Intelligence"],
                "summary": "List overdue customers",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.OverdueCustomerDTO"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/tenants/{tenantId}/intelligence/runs": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Intelligence"],
                "summary": "List intelligence runs",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Items per page (max 200)", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PaginatedResponse"}}
                }
            }
        },
        "/tenants/{tenantId}/alerts": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Alerts"],
                "summary": "List manager alerts",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"enum": ["overdue_high_value", "unusual_order"], "type": "string", "description": "Filter by alert type", "name": "type", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Items per page (max 200)", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PaginatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/tenants/{tenantId}/customers/{customerId}/order-anomalies": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Intelligence"],
                "summary": "Check an order against the customer's history",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "description": "Customer ID", "name": "customerId", "in": "path", "required": true},
                    {"description": "Order lines", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CheckOrderAnomaliesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.OrderAnomalyReportDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/tenants/{tenantId}/customers/{customerId}/purchase-frequency": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Intelligence"],
                "summary": "Get a customer's purchase frequency",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "description": "Customer ID", "name": "customerId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PurchaseFrequencyDTO"}},
                    "204": {"description": "Insufficient order history"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/tenants/{tenantId}/customers/{customerId}/product-affinity": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Intelligence"],
                "summary": "Get a customer's product affinity",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Tenant ID", "name": "tenantId", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "description": "Customer ID", "name": "customerId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ProductAffinityReportDTO"}},
                    "204": {"description": "No order history"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "domain.APIError": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "domain.PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "domain.RunTriggerResponse": {
            "type": "object",
            "properties": {
                "accepted": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "domain.OrderItemInput": {
            "type": "object",
            "required": ["productName"],
            "properties": {
                "productId": {"type": "string"},
                "productName": {"type": "string", "maxLength": 200},
                "quantity": {"type": "number"}
            }
        },
        "domain.CheckOrderAnomaliesRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/domain.OrderItemInput"}}
            }
        },
        "domain.MissingProductDTO": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "productId": {"type": "string"},
                "productName": {"type": "string"},
                "regularityScore": {"type": "number"},
                "daysSinceLastPurchase": {"type": "integer"},
                "avgDaysBetweenPurchases": {"type": "number"},
                "severity": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "domain.QuantityAnomalyDTO": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "productId": {"type": "string"},
                "productName": {"type": "string"},
                "orderedQuantity": {"type": "number"},
                "averageQuantity": {"type": "number"},
                "reductionPercent": {"type": "integer"},
                "severity": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "domain.OrderAnomalyReportDTO": {
            "type": "object",
            "properties": {
                "hasAnomalies": {"type": "boolean"},
                "missingProducts": {"type": "array", "items": {"$ref": "#/definitions/domain.MissingProductDTO"}},
                "quantityAnomalies": {"type": "array", "items": {"$ref": "#/definitions/domain.QuantityAnomalyDTO"}}
            }
        },
        "domain.TrendDTO": {
            "type": "object",
            "properties": {
                "declining": {"type": "boolean"},
                "recentAvg": {"type": "number"},
                "olderAvg": {"type": "number"},
                "trend": {"type": "string"}
            }
        },
        "domain.OverdueCustomerDTO": {
            "type": "object",
            "properties": {
                "customerId": {"type": "string"},
                "customerName": {"type": "string"},
                "customerPhone": {"type": "string"},
                "daysOverdue": {"type": "integer"},
                "threshold": {"type": "integer"},
                "avgDaysBetweenOrders": {"type": "number"},
                "lastOrderDate": {"type": "string"},
                "expectedNextOrderDate": {"type": "string"},
                "churnRiskScore": {"type": "number"},
                "confidenceScore": {"type": "number"},
                "patternStrength": {"type": "string"},
                "tier": {"type": "string"},
                "tierPriority": {"type": "integer"},
                "lifetimeValue": {"type": "number"},
                "trend": {"$ref": "#/definitions/domain.TrendDTO"},
                "priorityScore": {"type": "number"},
                "severity": {"type": "string"}
            }
        },
        "domain.PurchaseFrequencyDTO": {
            "type": "object",
            "properties": {
                "customerId": {"type": "string"},
                "orderCount": {"type": "integer"},
                "avgDaysBetweenOrders": {"type": "number"},
                "lastOrderDate": {"type": "string"},
                "daysSinceLastOrder": {"type": "integer"},
                "nextOrderPrediction": {
                    "type": "object",
                    "properties": {"daysUntilDue": {"type": "integer"}, "isDue": {"type": "boolean"}}
                },
                "spending": {
                    "type": "object",
                    "properties": {"totalSpent": {"type": "number"}, "averageOrderValue": {"type": "number"}}
                }
            }
        },
        "domain.ProductUsageDTO": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "productName": {"type": "string"},
                "timesOrdered": {"type": "integer"},
                "purchaseFrequency": {"type": "number"},
                "totalQuantity": {"type": "number"}
            }
        },
        "domain.ProductAffinityReportDTO": {
            "type": "object",
            "properties": {
                "customerId": {"type": "string"},
                "totalOrders": {"type": "integer"},
                "regularThreshold": {"type": "integer"},
                "regularProducts": {"type": "array", "items": {"$ref": "#/definitions/domain.ProductUsageDTO"}},
                "occasionalProducts": {"type": "array", "items": {"$ref": "#/definitions/domain.ProductUsageDTO"}},
                "affinityPairs": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "pair": {"type": "string"},
                            "products": {"type": "array", "items": {"type": "string"}},
                            "frequency": {"type": "integer"}
                        }
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "x-api-key", "in": "header"},
        "BearerAuth": {"description": "Bearer token with a tenant_id claim", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Straye Sales Assistant API",
	Description:      "Purchase-pattern intelligence and proactive outreach for WhatsApp commerce tenants.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package docs holds the swagger descriptor served under /swagger.
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
        "/api/admin/orders": {
            "get": {
                "security": [{"AdminToken": []}],
                "description": "Lists orders newest first",
                "produces": ["application/json"],
                "summary": "ListOrders",
                "operationId": "list-orders",
                "parameters": [
                    {"maximum": 100, "type": "integer", "description": "page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.listOrdersResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/api/admin/orders/{id}/status": {
            "put": {
                "security": [{"AdminToken": []}],
                "description": "Moves an order to shipped, delivered or cancelled",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "ChangeStatus",
                "operationId": "change-order-status",
                "parameters": [
                    {"type": "integer", "description": "order id", "name": "id", "in": "path", "required": true},
                    {"description": "new status", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.StatusChange"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/api/checkout/session": {
            "post": {
                "description": "Validates the cart, opens a hosted payment session and records a pending order",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "CreateCheckoutSession",
                "operationId": "create-checkout-session",
                "parameters": [
                    {"description": "cart", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.Cart"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.CheckoutSession"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "default": {"description": "", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/api/orders/session/{session_id}": {
            "get": {
                "description": "Returns the order created for a payment session, used by the success page",
                "produces": ["application/json"],
                "summary": "GetOrderBySession",
                "operationId": "get-order-by-session",
                "parameters": [
                    {"type": "string", "description": "payment session id", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/api/orders/{id}": {
            "get": {
                "description": "Returns an order with its items",
                "produces": ["application/json"],
                "summary": "GetOrderById",
                "operationId": "get-order-by-id",
                "parameters": [
                    {"type": "integer", "description": "order id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/api/orders/{id}/tracking": {
            "get": {
                "description": "Refreshes the carrier status of a shipped order and returns its tracking log",
                "produces": ["application/json"],
                "summary": "GetTracking",
                "operationId": "get-tracking",
                "parameters": [
                    {"type": "integer", "description": "order id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.TrackingView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/api/shipping/quote": {
            "get": {
                "description": "Prices delivery for a postal code, delivery type and quantity",
                "produces": ["application/json"],
                "summary": "ShippingQuote",
                "operationId": "shipping-quote",
                "parameters": [
                    {"type": "string", "description": "destination postal code", "name": "postal_code", "in": "query", "required": true},
                    {"enum": ["pickup-point", "home"], "type": "string", "description": "pickup-point or home", "name": "delivery_type", "in": "query"},
                    {"minimum": 1, "type": "integer", "description": "units", "name": "quantity", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/shipping.Quote"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/api/stripe/webhook": {
            "post": {
                "description": "Receives signed payment processor events",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "StripeWebhook",
                "operationId": "stripe-webhook",
                "parameters": [
                    {"type": "string", "description": "event signature", "name": "Stripe-Signature", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.errorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Reports database connectivity and pool statistics",
                "produces": ["application/json"],
                "summary": "Healthz",
                "operationId": "healthz",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "http.errorResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "http.listOrdersResponse": {
            "type": "object",
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/models.Order"}}}
        },
        "models.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "customer_name": {"type": "string"},
                "customer_email": {"type": "string"},
                "customer_phone": {"type": "string"},
                "delivery_address": {"type": "string"},
                "delivery_postal_code": {"type": "string"},
                "delivery_city": {"type": "string"},
                "delivery_district": {"type": "string"},
                "delivery_type": {"type": "string", "enum": ["pickup-point", "home"]},
                "shipping_cost": {"type": "string", "example": "5.58"},
                "total_amount": {"type": "string", "example": "35.58"},
                "payment_session_id": {"type": "string"},
                "payment_status": {"type": "string", "enum": ["pending", "completed", "failed"]},
                "order_status": {"type": "string", "enum": ["pending", "processing", "shipped", "delivered", "cancelled"]},
                "tracking_number": {"type": "string"},
                "tracking_url": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.OrderItem"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.OrderItem": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "product_name": {"type": "string"},
                "quantity": {"type": "integer"},
                "unit_price": {"type": "string"},
                "total_price": {"type": "string"}
            }
        },
        "models.ShipmentTracking": {
            "type": "object",
            "properties": {
                "tracking_number": {"type": "string"},
                "status": {"type": "string"},
                "location": {"type": "string"},
                "last_update": {"type": "string"}
            }
        },
        "service.Cart": {
            "type": "object",
            "required": ["customer_name", "customer_email", "customer_phone", "delivery_address", "delivery_postal_code", "delivery_city", "delivery_district", "delivery_type", "quantity"],
            "properties": {
                "customer_name": {"type": "string"},
                "customer_email": {"type": "string"},
                "customer_phone": {"type": "string"},
                "delivery_address": {"type": "string"},
                "delivery_postal_code": {"type": "string", "example": "1100-048"},
                "delivery_city": {"type": "string"},
                "delivery_district": {"type": "string"},
                "delivery_type": {"type": "string", "enum": ["pickup-point", "home"]},
                "quantity": {"type": "integer", "minimum": 1},
                "shipping_cost": {"type": "number"}
            }
        },
        "service.CheckoutSession": {
            "type": "object",
            "properties": {
                "checkoutUrl": {"type": "string"},
                "sessionId": {"type": "string"},
                "shippingCost": {"type": "string"},
                "total": {"type": "string"}
            }
        },
        "service.StatusChange": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["shipped", "delivered", "cancelled"]},
                "tracking_number": {"type": "string"},
                "tracking_url": {"type": "string"}
            }
        },
        "service.TrackingView": {
            "type": "object",
            "properties": {
                "order_id": {"type": "integer"},
                "order_status": {"type": "string"},
                "tracking_number": {"type": "string"},
                "tracking_url": {"type": "string"},
                "events": {"type": "array", "items": {"$ref": "#/definitions/models.ShipmentTracking"}}
            }
        },
        "shipping.Quote": {
            "type": "object",
            "properties": {
                "cost": {"type": "string"},
                "region": {"type": "string", "enum": ["continental", "azores", "madeira", "spain-peninsula", "spain-other"]},
                "source": {"type": "string", "enum": ["rate-table", "carrier-api"]},
                "fallback": {"type": "string"},
                "weight_kg": {"type": "number"}
            }
        }
    },
    "securityDefinitions": {
        "AdminToken": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "dough storefront",
	Description:      "Checkout, payment webhook, shipping quotes and order tracking for a single-product dough shop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

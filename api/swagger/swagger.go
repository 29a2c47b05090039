package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Activities API",
        "description": "Attendance recording and pay decisions for prison activities",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Staff authentication"},
        {"name": "Attendance", "description": "Attendance recording and the reason catalog"},
        {"name": "Sessions", "description": "Session instance cancellation"},
        {"name": "Summary", "description": "Daily attendance summaries and exports"},
        {"name": "Exclusions", "description": "Allocation exclusion patterns"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a staff user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance records",
                "parameters": [
                    {"name": "sessionId", "in": "query", "type": "integer"},
                    {"name": "prisonCode", "in": "query", "type": "string"},
                    {"name": "prisonerNumber", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "timeSlot", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/mark": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance outcomes",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or unknown reason"},
                    "409": {"description": "Attendance already recorded"}
                }
            }
        },
        "/attendance/{id}/reset": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Reset a recorded attendance back to waiting",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Attendance is not recorded"}
                }
            }
        },
        "/attendance-reasons": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List the attendance reason catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/cancel": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Cancel a session instance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CancelSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session is already cancelled"}
                }
            }
        },
        "/sessions/{id}/uncancel": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Reinstate a cancelled session instance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session is not cancelled"}
                }
            }
        },
        "/summary/daily": {
            "get": {
                "tags": ["Summary"],
                "summary": "Daily attendance summary for a prison",
                "parameters": [
                    {"name": "prisonCode", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/summary/exports": {
            "post": {
                "tags": ["Summary"],
                "summary": "Request a CSV or PDF export of a daily summary",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/summary/exports/{id}": {
            "get": {
                "tags": ["Summary"],
                "summary": "Check the status of an export",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Export not found"}
                }
            }
        },
        "/summary/exports/download": {
            "get": {
                "tags": ["Summary"],
                "summary": "Download a completed export via its signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/allocations/{id}/exclusions/preview": {
            "post": {
                "tags": ["Exclusions"],
                "summary": "Preview changes to an allocation's exclusion pattern",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateExclusionsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot cannot be resolved against the schedule"}
                }
            }
        },
        "/allocations/{id}/exclusions": {
            "put": {
                "tags": ["Exclusions"],
                "summary": "Replace an allocation's exclusion pattern",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateExclusionsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot cannot be resolved against the schedule"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/MarkAttendanceItem"}
                }
            }
        },
        "MarkAttendanceItem": {
            "type": "object",
            "required": ["attendanceId", "reason"],
            "properties": {
                "attendanceId": {"type": "integer"},
                "reason": {"type": "string"},
                "sickPay": {"type": "boolean"},
                "restPay": {"type": "boolean"},
                "otherAbsencePay": {"type": "boolean"},
                "incentiveLevelWarningIssued": {"type": "boolean"},
                "caseNoteText": {"type": "string"},
                "otherAbsenceReason": {"type": "string"}
            }
        },
        "CancelSessionRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["prisonCode", "date", "format"],
            "properties": {
                "prisonCode": {"type": "string"},
                "date": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "UpdateExclusionsRequest": {
            "type": "object",
            "properties": {
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ExclusionSlotInput"}
                }
            }
        },
        "ExclusionSlotInput": {
            "type": "object",
            "required": ["weekNumber", "timeSlot"],
            "properties": {
                "weekNumber": {"type": "integer"},
                "timeSlot": {"type": "string", "enum": ["AM", "PM", "ED"]},
                "monday": {"type": "boolean"},
                "tuesday": {"type": "boolean"},
                "wednesday": {"type": "boolean"},
                "thursday": {"type": "boolean"},
                "friday": {"type": "boolean"},
                "saturday": {"type": "boolean"},
                "sunday": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

package handlers

// @title Baúl Admin API
// @version 1.0
// @description Administration backend of the Baúl de Moda store: catalog management, bulk CSV import, sales statistics and public price lookups.

// @contact.name API Support
// @contact.url https://github.com/baul-de-moda/baul-admin-api

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name productos
// @tag.description Product administration and bulk import

// @tag.name estadisticas
// @tag.description Sales statistics dashboard

// @tag.name precios
// @tag.description Public price lookups (served at /api/precios)

// @tag.name auth
// @tag.description Authentication operations

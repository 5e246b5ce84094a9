// @title           Physical AI Book RAG API
// @version         1.0
// @description     Question answering over the Physical AI textbook, with streamed answers and corpus ingestion.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey AdminBearer
// @in                         header
// @name                       Authorization
package utils

//run redis
//docker run -p 6379:6379 -d redis

//run qdrant
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//run postgres (STORE_BACKEND=postgres)
//docker run -p 5432:5432 -e POSTGRES_PASSWORD=bookrag -e POSTGRES_DB=bookrag -d postgres:16

//swagger init
//swag init -g internal/adapter/utils/docs_info.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs

package tests

// Mock generation for handler tests.
//
// Usage:
//   go generate ./internal/adapter/http/handlers/tests
//
//go:generate mockery --name TodoService --dir ../../../../core/ports --output ./mocks --outpkg mocks --filename todo_service_mock.go --with-expecter
//go:generate mockery --name AuthService --dir ../../../../core/ports --output ./mocks --outpkg mocks --filename auth_service_mock.go --with-expecter

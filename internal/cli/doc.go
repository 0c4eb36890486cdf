// Package cli реализует инструмент командной строки ForgeFlow.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с ForgeFlow API.
// Работает через HTTP, не импортирует внутренние пакеты движка.
// CLI используется для управления workflows и просмотра executions.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для ForgeFlow API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	workflows, err := client.ListWorkflows()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: forgeflow workflow list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - workflow: list, create, show, delete, activate, deactivate,
//     validate, execute
//   - exec: list, show, active
//
// Каждая группа создаётся через фабричную функцию (NewWorkflowCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli

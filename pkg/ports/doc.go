/*
Package ports defines the driven ports (interfaces) for the Souqra engine.

These interfaces decouple the pipeline from external implementations, allowing
the engine to work with various storage backends, model providers and search services.

# Key Interfaces

  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - Generator: Produces schema-conforming JSON from a language model.
  - Searcher: Supplies web research to the research and strategy steps.
  - PromptSource: Supplies operator overrides of the step prompts.
  - Controller: The session API consumed by the HTTP, MCP and CLI adapters.
*/
package ports

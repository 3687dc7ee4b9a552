package metadata

// PipelineConfig describes one graphics pipeline over the main render pass.
type PipelineConfig struct {
	/** @brief The combined pipeline layout the pipeline consumes. */
	PipelineLayout PipelineLayoutHandle
	/** @brief The vertex layout, from the vertex stage's declarations. */
	VertexInput *VertexInputDescription
	/** @brief The shader stages, in pipeline order. */
	Stages []*ShaderModule
	/** @brief Indicates if this pipeline should use wireframe mode. */
	IsWireframe bool
}

package metadata

/**
 * @brief A compiled shader stage together with the resource declarations it
 * consumes. Created by the material system from SPIR-V loaded through the
 * asset manager; the backend handle points at the native module.
 */
type ShaderModule struct {
	Name       string
	StageFlags ShaderStageFlags
	Handle     ShaderModuleHandle
	Resources  []*ResourceDescription
}

// VertexInput returns the module's vertex input description, if it declares
// one. Only vertex stages do.
func (sm *ShaderModule) VertexInput() (*VertexInputDescription, bool) {
	for _, resource := range sm.Resources {
		if resource.Type == ResourceDescriptionVertexInput {
			return resource.VertexInput, true
		}
	}
	return nil, false
}

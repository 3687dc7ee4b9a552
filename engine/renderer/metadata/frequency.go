package metadata

import "fmt"

/**
 * @brief Defines descriptor frequency, which indicates how often the
 * resources bound at that tier get updated. Tiers are ordered from least
 * to most frequently updated; the pipeline layout orders its descriptor
 * set layouts the same way.
 */
type DescriptorFrequency int

const (
	/** @brief Bound once for the whole frame (camera, environment). */
	DescriptorFrequencyGlobal DescriptorFrequency = 0
	/** @brief Bound once per render pass. */
	DescriptorFrequencyPass DescriptorFrequency = 1
	/** @brief Bound once per material switch. */
	DescriptorFrequencyMaterial DescriptorFrequency = 2
	/** @brief Bound per drawn object. */
	DescriptorFrequencyObject DescriptorFrequency = 3
)

// DescriptorFrequencyCount is the number of tiers; set indices in the
// pipeline layout run from 0 to DescriptorFrequencyCount-1.
const DescriptorFrequencyCount = 4

func (f DescriptorFrequency) String() string {
	switch f {
	case DescriptorFrequencyGlobal:
		return "Global"
	case DescriptorFrequencyPass:
		return "Pass"
	case DescriptorFrequencyMaterial:
		return "Material"
	case DescriptorFrequencyObject:
		return "Object"
	}
	return fmt.Sprintf("DescriptorFrequency(%d)", int(f))
}

// Frequencies returns all tiers in ascending update-rate order.
func Frequencies() [DescriptorFrequencyCount]DescriptorFrequency {
	return [DescriptorFrequencyCount]DescriptorFrequency{
		DescriptorFrequencyGlobal,
		DescriptorFrequencyPass,
		DescriptorFrequencyMaterial,
		DescriptorFrequencyObject,
	}
}

// FrequencySet holds exactly one value per descriptor frequency tier.
type FrequencySet[T any] struct {
	Global   T
	Pass     T
	Material T
	Object   T
}

func (fs *FrequencySet[T]) Get(frequency DescriptorFrequency) T {
	return *fs.GetPtr(frequency)
}

func (fs *FrequencySet[T]) GetPtr(frequency DescriptorFrequency) *T {
	switch frequency {
	case DescriptorFrequencyGlobal:
		return &fs.Global
	case DescriptorFrequencyPass:
		return &fs.Pass
	case DescriptorFrequencyMaterial:
		return &fs.Material
	default:
		return &fs.Object
	}
}

// Values returns the per-tier values in ascending tier order.
func (fs FrequencySet[T]) Values() []T {
	return []T{fs.Global, fs.Pass, fs.Material, fs.Object}
}

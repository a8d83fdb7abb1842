package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/refdex"
	"github.com/fwojciec/refdex/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements refdex.Converter at compile time.
var _ refdex.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts basic paragraph", func(t *testing.T) {
		t.Parallel()

		html := `<p>Applies a voxel grid filter to the input cloud.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "Applies a voxel grid filter to the input cloud.")
	})

	t.Run("converts headings", func(t *testing.T) {
		t.Parallel()

		html := `<h2>Detailed Description</h2><h3>Parameters</h3>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "## Detailed Description")
		assert.Contains(t, md, "### Parameters")
	})

	t.Run("converts links", func(t *testing.T) {
		t.Parallel()

		html := `<p>See <a href="https://docs.example.com/classpcl_1_1Filter.html">pcl::Filter</a> for the base class.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "[pcl::Filter](https://docs.example.com/classpcl_1_1Filter.html)")
	})

	t.Run("converts unordered lists", func(t *testing.T) {
		t.Parallel()

		html := `<ul><li>organized point clouds</li><li>unorganized point clouds</li></ul>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "- organized point clouds")
		assert.Contains(t, md, "- unorganized point clouds")
	})

	t.Run("converts ordered lists", func(t *testing.T) {
		t.Parallel()

		html := `<ol><li>set the input cloud</li><li>configure the leaf size</li><li>call filter</li></ol>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "1. set the input cloud")
		assert.Contains(t, md, "2. configure the leaf size")
		assert.Contains(t, md, "3. call filter")
	})

	t.Run("converts inline code", func(t *testing.T) {
		t.Parallel()

		html := `<p>Call <code>setInputCloud()</code> before filtering.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "`setInputCloud()`")
	})

	t.Run("converts code blocks with language hint", func(t *testing.T) {
		t.Parallel()

		html := `<pre><code class="language-cpp">pcl::VoxelGrid&lt;pcl::PointXYZ&gt; sor;
sor.setLeafSize(0.01f, 0.01f, 0.01f);
</code></pre>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "```cpp")
		assert.Contains(t, md, "setLeafSize")
		assert.Contains(t, md, "```")
	})

	t.Run("converts code blocks without language hint", func(t *testing.T) {
		t.Parallel()

		html := `<pre><code>cloud->points.resize(100);</code></pre>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "```")
		assert.Contains(t, md, "cloud->points.resize(100);")
	})

	t.Run("converts parameter tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<thead><tr><th>Parameter</th><th>Description</th></tr></thead>
<tbody><tr><td>cloud</td><td>the input point cloud</td></tr><tr><td>indices</td><td>the point indices to use</td></tr></tbody>
</table>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		// Table cells may have padding for alignment, so check for content
		assert.Contains(t, md, "Parameter")
		assert.Contains(t, md, "cloud")
		assert.Contains(t, md, "indices")
		assert.Contains(t, md, "|")
		assert.Contains(t, md, "---")
	})

	t.Run("converts bold and italic", func(t *testing.T) {
		t.Parallel()

		html := `<p><strong>Note:</strong> the cloud must be <em>organized</em>.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "**Note:**")
		assert.Contains(t, md, "*organized*")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		_, err := conv.Convert("")

		require.Error(t, err)
		assert.Equal(t, refdex.EINVALID, refdex.ErrorCode(err))
	})

	t.Run("handles full detailed description", func(t *testing.T) {
		t.Parallel()

		html := `<div>
<h2>pcl::VoxelGrid</h2>
<p>VoxelGrid assembles a local 3D grid over a given point cloud, and downsamples the data.</p>
<h3>Usage</h3>
<pre><code class="language-cpp">pcl::VoxelGrid&lt;pcl::PointXYZ&gt; sor;
sor.setInputCloud(cloud);
sor.filter(*cloud_filtered);</code></pre>
<p>Call <code>setLeafSize()</code> to control the voxel resolution.</p>
<h3>Parameters</h3>
<table>
<thead><tr><th>Name</th><th>Default</th><th>Description</th></tr></thead>
<tbody>
<tr><td>leaf_size</td><td>0.01</td><td>Voxel edge length</td></tr>
<tr><td>downsample_all_data</td><td>true</td><td>Filter every field</td></tr>
</tbody>
</table>
</div>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "## pcl::VoxelGrid")
		assert.Contains(t, md, "### Usage")
		assert.Contains(t, md, "```cpp")
		assert.Contains(t, md, "sor.setInputCloud(cloud);")
		assert.Contains(t, md, "`setLeafSize()`")
		// Table cells may have padding for alignment
		assert.Contains(t, md, "leaf_size")
		assert.Contains(t, md, "Voxel edge length")
	})
}

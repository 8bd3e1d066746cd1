package compositor

// ReloadPostProcess rebuilds the post-process shader from path, or from the
// current path when path is empty. On failure the active program is kept.
func (c *Compositor) ReloadPostProcess(path string) error {
	if path == "" {
		path = c.shaderPath
	}
	prog, err := c.pipeline.shaders.BuildFile(path)
	if err != nil {
		c.reloadErr = err.Error()
		c.logger.Error("shader reload failed, keeping current shader", "path", path, "error", err)
		return err
	}
	c.pipeline.SetPostProcess(prog)
	c.shaderPath = path
	c.reloadErr = ""
	c.redraw = true
	c.logger.Info("shader reloaded", "path", path)
	return nil
}

// PollParams re-reads the parameter file if it changed.
func (c *Compositor) PollParams() {
	ps, changed, err := c.params.Poll()
	if err != nil {
		c.logger.Warn("failed to read params", "path", c.params.Path(), "error", err)
		return
	}
	if !changed {
		return
	}
	c.pipeline.SetParams(ps)
	c.redraw = true
	c.logger.Info("loaded params", "count", len(ps))
}

// Package fixedfunc holds built-in pipeline stages that run without a
// shader. Action lists invoke them through the Pipeline interface.
package fixedfunc

package common

// DepylerVersion is the current Depyler version as a string.
const DepylerVersion string = "0.3.1"

// RustEdition is the Rust edition declared in every generated manifest.
const RustEdition string = "2021"

// OptionsFileName is the name of the optional per-project options file.
const OptionsFileName string = "depyler.toml"

// PythonFileExt is the file extension for a Python source file.
const PythonFileExt string = ".py"

// RuntimeModName is the name of the bundled runtime module providing the
// dynamic value type and its Python-semantic operations.
const RuntimeModName string = "depyler_runtime"

package codegen

// runtimeModule is the Rust source of the bundled dynamic value type.  It is
// appended to the emitted module whenever boxed emission produced a
// DepylerValue, so the output stays a single self-contained file.
const runtimeModule = `pub mod depyler_runtime {
    use std::collections::HashMap;

    /// A boxed Python value for code whose precise type could not be
    /// recovered during translation.
    #[derive(Debug, Clone, PartialEq)]
    pub enum DepylerValue {
        Int(i64),
        Float(f64),
        Str(String),
        Bool(bool),
        Bytes(Vec<u8>),
        List(Vec<DepylerValue>),
        Dict(HashMap<DepylerValue, DepylerValue>),
        None,
    }

    impl DepylerValue {
        /// Indexes a list or dict the way Python subscripting does,
        /// resolving negative list indices from the end.
        pub fn py_index<I: Into<DepylerValue>>(&self, idx: I) -> DepylerValue {
            let idx: DepylerValue = idx.into();
            match (self, idx) {
                (DepylerValue::List(items), DepylerValue::Int(i)) => {
                    let n = items.len() as i64;
                    let at = if i < 0 { n + i } else { i };
                    items.get(at as usize).cloned().unwrap_or(DepylerValue::None)
                }
                (DepylerValue::Dict(map), key) => {
                    map.get(&key).cloned().unwrap_or(DepylerValue::None)
                }
                _ => DepylerValue::None,
            }
        }

        /// Returns the string payload, stringifying other variants.
        pub fn get_str(&self) -> String {
            match self {
                DepylerValue::Str(s) => s.clone(),
                DepylerValue::Int(i) => i.to_string(),
                DepylerValue::Float(f) => f.to_string(),
                DepylerValue::Bool(b) => b.to_string(),
                DepylerValue::None => String::from("None"),
                other => format!("{:?}", other),
            }
        }

        /// Coerces to an integer the way int() does, panicking on
        /// unconvertible variants.
        pub fn to_i64(&self) -> i64 {
            match self {
                DepylerValue::Int(i) => *i,
                DepylerValue::Float(f) => *f as i64,
                DepylerValue::Bool(b) => *b as i64,
                DepylerValue::Str(s) => s.trim().parse::<i64>().expect("invalid integer literal"),
                _ => panic!("cannot convert value to int"),
            }
        }

        /// Python truthiness: empty containers, zero, and None are false.
        pub fn truthy(&self) -> bool {
            match self {
                DepylerValue::Int(i) => *i != 0,
                DepylerValue::Float(f) => *f != 0.0,
                DepylerValue::Str(s) => !s.is_empty(),
                DepylerValue::Bool(b) => *b,
                DepylerValue::Bytes(b) => !b.is_empty(),
                DepylerValue::List(items) => !items.is_empty(),
                DepylerValue::Dict(map) => !map.is_empty(),
                DepylerValue::None => false,
            }
        }

        /// Python len(), panicking for unsized variants.
        pub fn len(&self) -> usize {
            match self {
                DepylerValue::Str(s) => s.chars().count(),
                DepylerValue::Bytes(b) => b.len(),
                DepylerValue::List(items) => items.len(),
                DepylerValue::Dict(map) => map.len(),
                _ => panic!("value has no len()"),
            }
        }
    }

    impl Eq for DepylerValue {}

    impl std::hash::Hash for DepylerValue {
        fn hash<H: std::hash::Hasher>(&self, state: &mut H) {
            std::mem::discriminant(self).hash(state);
            match self {
                DepylerValue::Int(i) => i.hash(state),
                // Floats hash by bit pattern so equal keys land in the
                // same bucket.
                DepylerValue::Float(f) => f.to_bits().hash(state),
                DepylerValue::Str(s) => s.hash(state),
                DepylerValue::Bool(b) => b.hash(state),
                DepylerValue::Bytes(b) => b.hash(state),
                DepylerValue::List(items) => items.hash(state),
                DepylerValue::Dict(map) => map.len().hash(state),
                DepylerValue::None => {}
            }
        }
    }

    impl From<i64> for DepylerValue {
        fn from(v: i64) -> Self {
            DepylerValue::Int(v)
        }
    }

    impl From<i32> for DepylerValue {
        fn from(v: i32) -> Self {
            DepylerValue::Int(v as i64)
        }
    }

    impl From<f64> for DepylerValue {
        fn from(v: f64) -> Self {
            DepylerValue::Float(v)
        }
    }

    impl From<bool> for DepylerValue {
        fn from(v: bool) -> Self {
            DepylerValue::Bool(v)
        }
    }

    impl From<&str> for DepylerValue {
        fn from(v: &str) -> Self {
            DepylerValue::Str(v.to_string())
        }
    }

    impl From<String> for DepylerValue {
        fn from(v: String) -> Self {
            DepylerValue::Str(v)
        }
    }

    impl std::fmt::Display for DepylerValue {
        fn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {
            write!(f, "{}", self.get_str())
        }
    }
}
`
